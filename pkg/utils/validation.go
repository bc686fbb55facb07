package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// sysctl 키 패턴: net.core.rmem_max, net.ipv4.conf.eth0.rp_filter 등
	sysctlKeyPattern = regexp.MustCompile(`^[a-z0-9_]+(\.[a-zA-Z0-9_\-]+)+$`)

	// 커널 식별자 패턴: qdisc, 혼잡 제어, 모듈, ethtool 기능/파라미터 이름
	kernelNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_\-]*$`)

	// CPU 목록 패턴: 0, 0-3, 0,2,4-7
	cpuListPattern = regexp.MustCompile(`^\d+(-\d+)?(,\d+(-\d+)?)*$`)
)

// ValidateSysctlKey는 sysctl 키가 유효한지 검증
func ValidateSysctlKey(key string) error {
	if key == "" {
		return fmt.Errorf("sysctl 키가 비어있음")
	}

	if !sysctlKeyPattern.MatchString(key) {
		return fmt.Errorf("잘못된 sysctl 키 형식: %s", key)
	}

	return nil
}

// ValidateSysctlValue는 sysctl 값이 설정 파일 한 줄로 표현 가능한지 검증
func ValidateSysctlValue(value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("sysctl 값이 비어있음")
	}

	if strings.ContainsAny(value, "\n\r=#") {
		return fmt.Errorf("sysctl 값에 허용되지 않는 문자 포함: %q", value)
	}

	return nil
}

// ValidateKernelName은 qdisc, 혼잡 제어 알고리즘, 모듈, NIC 기능 이름을 검증
func ValidateKernelName(kind, name string) error {
	if name == "" {
		return fmt.Errorf("%s 이름이 비어있음", kind)
	}

	if len(name) > 64 || !kernelNamePattern.MatchString(name) {
		return fmt.Errorf("잘못된 %s 이름 형식: %s", kind, name)
	}

	return nil
}

// ValidateCPUList는 smp_affinity_list 형식의 CPU 목록을 검증
func ValidateCPUList(list string) error {
	if !cpuListPattern.MatchString(list) {
		return fmt.Errorf("잘못된 CPU 목록 형식: %s", list)
	}
	return nil
}
