package network

import (
	"fmt"
	"strconv"
	"strings"
)

// featureAliases는 ethtool -K 축약 이름을 커널 기능 문자열로 매핑합니다.
// 첫 번째 항목이 현재 값을 대표하며, 변경 시에는 존재하는 모든 항목을 바꿉니다.
var featureAliases = map[string][]string{
	"gro":    {"rx-gro", "generic-receive-offload"},
	"gso":    {"tx-generic-segmentation", "generic-segmentation-offload"},
	"tso":    {"tx-tcp-segmentation", "tx-tcp6-segmentation", "tx-tcp-ecn-segmentation", "tx-tcp-mangleid-segmentation", "tcp-segmentation-offload"},
	"lro":    {"rx-lro", "large-receive-offload"},
	"sg":     {"tx-scatter-gather", "scatter-gather"},
	"rxhash": {"rx-hashing", "receive-hashing"},
	"ntuple": {"rx-ntuple-filter", "ntuple-filters"},
	"rxvlan": {"rx-vlan-hw-parse"},
	"txvlan": {"tx-vlan-hw-insert"},
}

// shortFeatures는 커널 기능 맵을 축약 이름 맵으로 변환합니다. 드라이버가 제공하지 않는 기능은 제외됩니다.
func shortFeatures(kernel map[string]bool) map[string]bool {
	out := make(map[string]bool, len(featureAliases))
	for short, names := range featureAliases {
		for _, name := range names {
			if v, ok := kernel[name]; ok {
				out[short] = v
				break
			}
		}
	}
	return out
}

// kernelFeatureChange는 축약 이름 하나를 바꾸기 위한 ethtool 변경 맵을 만듭니다
func kernelFeatureChange(kernel map[string]bool, short string, enabled bool) (map[string]bool, error) {
	names, ok := featureAliases[short]
	if !ok {
		// 알려지지 않은 이름은 커널 기능 문자열로 그대로 사용합니다
		names = []string{short}
	}
	change := map[string]bool{}
	for _, name := range names {
		if _, ok := kernel[name]; ok {
			change[name] = enabled
		}
	}
	if len(change) == 0 {
		return nil, fmt.Errorf("feature %s not supported by driver", short)
	}
	return change, nil
}

// CoalesceParams는 지원하는 ethtool -C 파라미터입니다
var CoalesceParams = []string{"adaptive-rx", "adaptive-tx", "rx-usecs", "tx-usecs", "rx-frames", "tx-frames"}

func isBooleanCoalesce(param string) bool {
	return strings.HasPrefix(param, "adaptive-")
}

// ParseCoalesceValue는 프로파일 값(on/off 또는 숫자)을 ethtool 값으로 변환합니다
func ParseCoalesceValue(param, value string) (uint32, error) {
	if isBooleanCoalesce(param) {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "on", "1", "true":
			return 1, nil
		case "off", "0", "false":
			return 0, nil
		}
		return 0, fmt.Errorf("invalid %s value %q", param, value)
	}
	n, err := strconv.ParseUint(strings.TrimSpace(value), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", param, value, err)
	}
	return uint32(n), nil
}

// FormatCoalesceValue는 ethtool 값을 프로파일 값 형식으로 변환합니다
func FormatCoalesceValue(param string, v uint32) string {
	if isBooleanCoalesce(param) {
		return FormatFeatureState(v != 0)
	}
	return strconv.FormatUint(uint64(v), 10)
}

// ParseFeatureState는 on/off 값을 bool로 변환합니다
func ParseFeatureState(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid feature state %q", value)
}

// FormatFeatureState는 bool을 on/off로 변환합니다
func FormatFeatureState(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}
