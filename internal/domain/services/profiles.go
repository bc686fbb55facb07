package services

import (
	"nettune/internal/domain/entities"
)

// 버퍼 크기는 프로파일 의도에 따라 고정된 상수입니다.
// latency는 작은 백로그와 코얼레싱 지연 0을, throughput은 큰 버퍼와 적응형 코얼레싱을 사용합니다.
var builtinProfiles = map[entities.ProfileName]entities.Profile{
	entities.ProfileLatency: {
		Name:              entities.ProfileLatency,
		Qdisc:             "cake",
		CongestionControl: "bbr",
		Sysctls: []entities.KeyValue{
			{Key: "net.core.rmem_max", Value: "4194304"},
			{Key: "net.core.wmem_max", Value: "4194304"},
			{Key: "net.core.rmem_default", Value: "262144"},
			{Key: "net.core.wmem_default", Value: "262144"},
			{Key: "net.ipv4.tcp_rmem", Value: "4096 87380 4194304"},
			{Key: "net.ipv4.tcp_wmem", Value: "4096 65536 4194304"},
			{Key: "net.core.netdev_max_backlog", Value: "1000"},
			{Key: "net.core.somaxconn", Value: "4096"},
			{Key: "net.ipv4.tcp_notsent_lowat", Value: "16384"},
			{Key: "net.ipv4.tcp_fastopen", Value: "3"},
			{Key: "net.ipv4.tcp_slow_start_after_idle", Value: "0"},
			{Key: "net.ipv4.tcp_mtu_probing", Value: "1"},
		},
		Offloads: []entities.KeyValue{
			{Key: "gro", Value: "off"},
			{Key: "gso", Value: "off"},
			{Key: "tso", Value: "off"},
			{Key: "lro", Value: "off"},
		},
		Coalesce: []entities.KeyValue{
			{Key: "adaptive-rx", Value: "off"},
			{Key: "adaptive-tx", Value: "off"},
			{Key: "rx-usecs", Value: "0"},
			{Key: "tx-usecs", Value: "0"},
		},
		SpreadIRQs: true,
	},
	entities.ProfileBalanced: {
		Name:              entities.ProfileBalanced,
		Qdisc:             "cake",
		CongestionControl: "bbr",
		Sysctls: []entities.KeyValue{
			{Key: "net.core.rmem_max", Value: "16777216"},
			{Key: "net.core.wmem_max", Value: "16777216"},
			{Key: "net.core.rmem_default", Value: "1048576"},
			{Key: "net.core.wmem_default", Value: "1048576"},
			{Key: "net.ipv4.tcp_rmem", Value: "4096 87380 16777216"},
			{Key: "net.ipv4.tcp_wmem", Value: "4096 65536 16777216"},
			{Key: "net.core.netdev_max_backlog", Value: "5000"},
			{Key: "net.core.somaxconn", Value: "8192"},
			{Key: "net.ipv4.tcp_notsent_lowat", Value: "131072"},
			{Key: "net.ipv4.tcp_fastopen", Value: "3"},
			{Key: "net.ipv4.tcp_slow_start_after_idle", Value: "0"},
			{Key: "net.ipv4.tcp_mtu_probing", Value: "1"},
		},
		Offloads: []entities.KeyValue{
			{Key: "gro", Value: "on"},
			{Key: "gso", Value: "on"},
			{Key: "tso", Value: "on"},
			{Key: "lro", Value: "off"},
		},
		Coalesce: []entities.KeyValue{
			{Key: "adaptive-rx", Value: "on"},
			{Key: "rx-usecs", Value: "50"},
			{Key: "tx-usecs", Value: "50"},
		},
	},
	entities.ProfileThroughput: {
		Name:              entities.ProfileThroughput,
		Qdisc:             "fq",
		CongestionControl: "bbr",
		Sysctls: []entities.KeyValue{
			{Key: "net.core.rmem_max", Value: "67108864"},
			{Key: "net.core.wmem_max", Value: "67108864"},
			{Key: "net.core.rmem_default", Value: "4194304"},
			{Key: "net.core.wmem_default", Value: "4194304"},
			{Key: "net.ipv4.tcp_rmem", Value: "4096 131072 67108864"},
			{Key: "net.ipv4.tcp_wmem", Value: "4096 65536 67108864"},
			{Key: "net.core.netdev_max_backlog", Value: "30000"},
			{Key: "net.core.netdev_budget", Value: "600"},
			{Key: "net.core.somaxconn", Value: "65535"},
			{Key: "net.ipv4.tcp_window_scaling", Value: "1"},
			{Key: "net.ipv4.tcp_fastopen", Value: "3"},
			{Key: "net.ipv4.tcp_slow_start_after_idle", Value: "0"},
			{Key: "net.ipv4.tcp_mtu_probing", Value: "1"},
		},
		Offloads: []entities.KeyValue{
			{Key: "gro", Value: "on"},
			{Key: "gso", Value: "on"},
			{Key: "tso", Value: "on"},
			{Key: "lro", Value: "off"},
		},
		Coalesce: []entities.KeyValue{
			{Key: "adaptive-rx", Value: "on"},
			{Key: "adaptive-tx", Value: "on"},
			{Key: "rx-usecs", Value: "100"},
			{Key: "tx-usecs", Value: "100"},
		},
		SpreadIRQs: true,
	},
}

// BuiltinProfile은 내장 프로파일의 복사본을 반환합니다
func BuiltinProfile(name entities.ProfileName) (entities.Profile, bool) {
	p, ok := builtinProfiles[name]
	if !ok {
		return entities.Profile{}, false
	}
	p.Sysctls = append([]entities.KeyValue(nil), p.Sysctls...)
	p.Offloads = append([]entities.KeyValue(nil), p.Offloads...)
	p.Coalesce = append([]entities.KeyValue(nil), p.Coalesce...)
	return p, true
}
