package services

import (
	"testing"

	"nettune/internal/domain/entities"
	domainErrors "nettune/internal/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullEnv() entities.Environment {
	return entities.Environment{
		Interface: "eth0",
		MTU:       1500,
		BBR:       entities.CapabilitySupported,
		CAKE:      entities.CapabilitySupported,
		CPUs:      4,
		IRQs:      []int{40, 41, 42, 43, 44},
	}
}

func mustProfile(t *testing.T, name entities.ProfileName) entities.Profile {
	p, ok := BuiltinProfile(name)
	require.True(t, ok)
	return p
}

func valueOf(settings []entities.Setting, key string) (string, bool) {
	for _, s := range settings {
		if s.Key == key {
			return s.Value, true
		}
	}
	return "", false
}

func TestProfileResolver_IsPure(t *testing.T) {
	resolver := NewProfileResolver()

	for _, name := range entities.ProfileNames {
		t.Run(string(name), func(t *testing.T) {
			profile := mustProfile(t, name)
			first, w1 := resolver.Resolve(profile, fullEnv(), ResolveOptions{MTU: 1420})
			second, w2 := resolver.Resolve(profile, fullEnv(), ResolveOptions{MTU: 1420})

			assert.Equal(t, first, second)
			assert.Equal(t, w1, w2)
		})
	}
}

func TestProfileResolver_KeysAreUnique(t *testing.T) {
	resolver := NewProfileResolver()
	profile := mustProfile(t, entities.ProfileThroughput)
	// 오버라이드 파일에 중복/예약 키가 있어도 결과 키는 유일해야 합니다
	profile.Sysctls = append(profile.Sysctls,
		entities.KeyValue{Key: "net.core.rmem_max", Value: "1"},
		entities.KeyValue{Key: "net.ipv4.tcp_congestion_control", Value: "reno"},
	)

	settings, _ := resolver.Resolve(profile, fullEnv(), ResolveOptions{})

	seen := map[string]bool{}
	for _, s := range settings {
		assert.False(t, seen[s.Key], "duplicate key %s", s.Key)
		seen[s.Key] = true
	}
	v, _ := valueOf(settings, "net.core.rmem_max")
	assert.Equal(t, "1", v)
	v, _ = valueOf(settings, "net.ipv4.tcp_congestion_control")
	assert.Equal(t, "bbr", v)
}

func TestProfileResolver_BBRFallback(t *testing.T) {
	resolver := NewProfileResolver()

	for _, capability := range []entities.Capability{entities.CapabilityUnsupported, entities.CapabilityUnknown} {
		for _, name := range entities.ProfileNames {
			t.Run(string(name)+"/"+capability.String(), func(t *testing.T) {
				env := fullEnv()
				env.BBR = capability

				settings, warnings := resolver.Resolve(mustProfile(t, name), env, ResolveOptions{})

				cc, ok := valueOf(settings, "net.ipv4.tcp_congestion_control")
				require.True(t, ok)
				assert.Equal(t, "cubic", cc)
				_, hasModule := valueOf(settings, "module/tcp_bbr")
				assert.False(t, hasModule)
				require.NotEmpty(t, warnings)
				assert.Equal(t, domainErrors.ErrorTypeUnsupported, warnings[0].Kind)
			})
		}
	}
}

func TestProfileResolver_CAKEFallback(t *testing.T) {
	resolver := NewProfileResolver()
	env := fullEnv()
	env.CAKE = entities.CapabilityUnsupported

	tests := []struct {
		profile entities.ProfileName
		want    string
	}{
		{entities.ProfileLatency, "fq_codel"},
		{entities.ProfileBalanced, "fq_codel"},
		{entities.ProfileThroughput, "fq"},
	}

	for _, tt := range tests {
		t.Run(string(tt.profile), func(t *testing.T) {
			settings, _ := resolver.Resolve(mustProfile(t, tt.profile), env, ResolveOptions{})

			q, _ := valueOf(settings, "net.core.default_qdisc")
			assert.Equal(t, tt.want, q)
			root, _ := valueOf(settings, "link/eth0/qdisc")
			assert.Equal(t, tt.want, root)
			_, hasCake := valueOf(settings, "module/sch_cake")
			assert.False(t, hasCake)
		})
	}
}

func TestProfileResolver_ModulesPrecedeDependentSettings(t *testing.T) {
	resolver := NewProfileResolver()
	settings, _ := resolver.Resolve(mustProfile(t, entities.ProfileLatency), fullEnv(), ResolveOptions{})

	require.GreaterOrEqual(t, len(settings), 3)
	assert.Equal(t, "module/tcp_bbr", settings[0].Key)
	assert.True(t, settings[0].Critical)
	assert.Equal(t, "module/sch_cake", settings[1].Key)
	assert.Equal(t, entities.CategorySysctl, settings[2].Category)

	last := entities.CategoryModule
	for _, s := range settings {
		assert.GreaterOrEqual(t, int(s.Category), int(last), "category order broken at %s", s.Key)
		last = s.Category
	}
}

func TestProfileResolver_MTU(t *testing.T) {
	resolver := NewProfileResolver()
	profile := mustProfile(t, entities.ProfileBalanced)

	tests := []struct {
		name        string
		profileMTU  int
		optsMTU     int
		wantMTU     string
		wantWarning bool
	}{
		{"지정하지 않으면 변경 없음", 0, 0, "", false},
		{"호출자 지정 MTU", 0, 1420, "1420", false},
		{"프로파일 기본 MTU", 1420, 0, "1420", false},
		{"호출자 값이 프로파일 값보다 우선", 1420, 9000, "9000", false},
		{"576 미만은 거부", 0, 80, "", true},
		{"경계값 576 허용", 0, 576, "576", false},
		{"음수는 거부", 0, -1, "", true},
		{"65535 초과는 거부", 0, 70000, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := profile
			p.MTU = tt.profileMTU

			settings, warnings := resolver.Resolve(p, fullEnv(), ResolveOptions{MTU: tt.optsMTU})

			v, ok := valueOf(settings, "link/eth0/mtu")
			assert.Equal(t, tt.wantMTU != "", ok)
			assert.Equal(t, tt.wantMTU, v)

			var validation bool
			for _, w := range warnings {
				if w.Kind == domainErrors.ErrorTypeValidation {
					validation = true
				}
			}
			assert.Equal(t, tt.wantWarning, validation)
		})
	}
}

func TestProfileResolver_IRQSpreading(t *testing.T) {
	resolver := NewProfileResolver()

	settings, _ := resolver.Resolve(mustProfile(t, entities.ProfileThroughput), fullEnv(), ResolveOptions{})
	cpus := map[string]string{}
	for _, s := range settings {
		if s.Category == entities.CategoryIRQAffinity {
			cpus[s.Name] = s.Value
		}
	}
	assert.Equal(t, map[string]string{"40": "0", "41": "1", "42": "2", "43": "3", "44": "0"}, cpus)

	// balanced는 IRQ 분산을 하지 않습니다
	settings, _ = resolver.Resolve(mustProfile(t, entities.ProfileBalanced), fullEnv(), ResolveOptions{})
	for _, s := range settings {
		assert.NotEqual(t, entities.CategoryIRQAffinity, s.Category)
	}

	// 단일 CPU에서는 분산할 대상이 없습니다
	env := fullEnv()
	env.CPUs = 1
	settings, _ = resolver.Resolve(mustProfile(t, entities.ProfileLatency), env, ResolveOptions{})
	for _, s := range settings {
		assert.NotEqual(t, entities.CategoryIRQAffinity, s.Category)
	}
}

func TestProfileResolver_OffloadsAreProfileChoice(t *testing.T) {
	resolver := NewProfileResolver()

	latency, _ := resolver.Resolve(mustProfile(t, entities.ProfileLatency), fullEnv(), ResolveOptions{})
	gro, _ := valueOf(latency, "nic/eth0/feature/gro")
	assert.Equal(t, "off", gro)

	throughput, _ := resolver.Resolve(mustProfile(t, entities.ProfileThroughput), fullEnv(), ResolveOptions{})
	gro, _ = valueOf(throughput, "nic/eth0/feature/gro")
	assert.Equal(t, "on", gro)
}

func TestBuiltinProfile_ReturnsCopy(t *testing.T) {
	p := mustProfile(t, entities.ProfileLatency)
	p.Sysctls[0].Value = "1"

	again := mustProfile(t, entities.ProfileLatency)
	assert.NotEqual(t, "1", again.Sysctls[0].Value)

	_, ok := BuiltinProfile("gaming")
	assert.False(t, ok)
}
