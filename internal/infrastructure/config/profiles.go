package config

import (
	"fmt"
	"path/filepath"

	"nettune/internal/domain/entities"
	"nettune/internal/domain/errors"
	"nettune/internal/domain/interfaces"
	"nettune/internal/domain/services"
	"nettune/internal/infrastructure/network"
	"nettune/pkg/utils"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// profileFile is the on-disk form of a profile override.
// Sections that are present replace the builtin section as a whole.
type profileFile struct {
	Qdisc             *string   `yaml:"qdisc"`
	CongestionControl *string   `yaml:"congestion_control"`
	MTU               *int      `yaml:"mtu"`
	SpreadIRQs        *bool     `yaml:"spread_irqs"`
	Sysctls           yaml.Node `yaml:"sysctls"`
	Offloads          yaml.Node `yaml:"offloads"`
	Coalesce          yaml.Node `yaml:"coalesce"`
}

// ProfileLoader resolves a profile name to its definition, applying an
// override file from the profile directory when one exists
type ProfileLoader struct {
	fileSystem interfaces.FileSystem
	logger     *logrus.Logger
	dir        string
}

// NewProfileLoader creates a new ProfileLoader
func NewProfileLoader(fs interfaces.FileSystem, logger *logrus.Logger, dir string) *ProfileLoader {
	return &ProfileLoader{
		fileSystem: fs,
		logger:     logger,
		dir:        dir,
	}
}

// Load returns the profile and the override path that was applied ("" for none)
func (l *ProfileLoader) Load(name entities.ProfileName) (entities.Profile, string, error) {
	profile, ok := services.BuiltinProfile(name)
	if !ok {
		return entities.Profile{}, "", errors.NewValidationError(fmt.Sprintf("unknown profile %q", name), entities.ErrInvalidProfileName)
	}

	path := filepath.Join(l.dir, string(name)+".yaml")
	if l.dir == "" || !l.fileSystem.Exists(path) {
		return profile, "", nil
	}

	data, err := l.fileSystem.ReadFile(path)
	if err != nil {
		return entities.Profile{}, "", errors.NewSystemError(fmt.Sprintf("failed to read profile override %s", path), err)
	}
	profile, err = ApplyProfileOverride(profile, data)
	if err != nil {
		return entities.Profile{}, "", errors.NewValidationError(fmt.Sprintf("invalid profile override %s", path), err)
	}

	l.logger.WithFields(logrus.Fields{
		"profile": name,
		"path":    path,
	}).Info("프로파일 오버라이드 적용")
	return profile, path, nil
}

// ApplyProfileOverride parses data and applies it on top of base
func ApplyProfileOverride(base entities.Profile, data []byte) (entities.Profile, error) {
	var file profileFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return base, err
	}

	profile := base
	if file.Qdisc != nil {
		if err := utils.ValidateKernelName("qdisc", *file.Qdisc); err != nil {
			return base, err
		}
		profile.Qdisc = *file.Qdisc
	}
	if file.CongestionControl != nil {
		if err := utils.ValidateKernelName("congestion control", *file.CongestionControl); err != nil {
			return base, err
		}
		profile.CongestionControl = *file.CongestionControl
	}
	if file.MTU != nil {
		profile.MTU = *file.MTU
	}
	if file.SpreadIRQs != nil {
		profile.SpreadIRQs = *file.SpreadIRQs
	}

	if file.Sysctls.Kind != 0 {
		pairs, err := orderedPairs(&file.Sysctls)
		if err != nil {
			return base, fmt.Errorf("sysctls: %w", err)
		}
		for _, kv := range pairs {
			if err := utils.ValidateSysctlKey(kv.Key); err != nil {
				return base, err
			}
			if err := utils.ValidateSysctlValue(kv.Value); err != nil {
				return base, fmt.Errorf("%s: %w", kv.Key, err)
			}
		}
		profile.Sysctls = pairs
	}

	if file.Offloads.Kind != 0 {
		pairs, err := orderedPairs(&file.Offloads)
		if err != nil {
			return base, fmt.Errorf("offloads: %w", err)
		}
		for i, kv := range pairs {
			if err := utils.ValidateKernelName("feature", kv.Key); err != nil {
				return base, err
			}
			enabled, err := network.ParseFeatureState(kv.Value)
			if err != nil {
				return base, fmt.Errorf("%s: %w", kv.Key, err)
			}
			pairs[i].Value = network.FormatFeatureState(enabled)
		}
		profile.Offloads = pairs
	}

	if file.Coalesce.Kind != 0 {
		pairs, err := orderedPairs(&file.Coalesce)
		if err != nil {
			return base, fmt.Errorf("coalesce: %w", err)
		}
		for i, kv := range pairs {
			if !isCoalesceParam(kv.Key) {
				return base, fmt.Errorf("unsupported coalesce parameter %q", kv.Key)
			}
			v, err := network.ParseCoalesceValue(kv.Key, kv.Value)
			if err != nil {
				return base, err
			}
			pairs[i].Value = network.FormatCoalesceValue(kv.Key, v)
		}
		profile.Coalesce = pairs
	}

	return profile, nil
}

// orderedPairs reads a mapping node keeping document order
func orderedPairs(node *yaml.Node) ([]entities.KeyValue, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a mapping at line %d", node.Line)
	}
	pairs := make([]entities.KeyValue, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%s: expected a scalar at line %d", key.Value, value.Line)
		}
		pairs = append(pairs, entities.KeyValue{Key: key.Value, Value: entities.NormalizeValue(value.Value)})
	}
	return pairs, nil
}

func isCoalesceParam(name string) bool {
	for _, p := range network.CoalesceParams {
		if p == name {
			return true
		}
	}
	return false
}
