package network

import (
	"context"
	"fmt"
	"strconv"

	"nettune/internal/domain/entities"
	"nettune/internal/domain/errors"
	"nettune/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// SystemMutator는 설정 카테고리별로 적절한 메커니즘을 선택하여 값을 적용합니다
type SystemMutator struct {
	links  interfaces.LinkManager
	nic    interfaces.NICManager
	kernel interfaces.KernelManager
	logger *logrus.Logger
}

// NewSystemMutator는 새로운 SystemMutator를 생성합니다
func NewSystemMutator(
	links interfaces.LinkManager,
	nic interfaces.NICManager,
	kernel interfaces.KernelManager,
	logger *logrus.Logger,
) *SystemMutator {
	return &SystemMutator{
		links:  links,
		nic:    nic,
		kernel: kernel,
		logger: logger,
	}
}

// Apply는 설정 하나를 적용합니다. 실패는 항상 MutationError로 반환됩니다.
func (m *SystemMutator) Apply(ctx context.Context, s entities.Setting) error {
	m.logger.WithFields(logrus.Fields{
		"key":      s.Key,
		"category": s.Category.String(),
	}).Debug(s.Describe())

	if err := m.apply(ctx, s); err != nil {
		if errors.IsMutationError(err) {
			return err
		}
		return errors.NewMutationError(fmt.Sprintf("%s 실패", s.Describe()), err)
	}
	return nil
}

func (m *SystemMutator) apply(ctx context.Context, s entities.Setting) error {
	switch s.Category {
	case entities.CategoryModule:
		return m.kernel.LoadModule(ctx, s.Name)

	case entities.CategorySysctl:
		return m.kernel.WriteSysctl(ctx, s.Name, s.Value)

	case entities.CategoryQdisc:
		return m.kernel.SetRootQdisc(ctx, s.Device, s.Value)

	case entities.CategoryMTU:
		mtu, err := strconv.Atoi(s.Value)
		if err != nil {
			return err
		}
		return m.links.SetLinkMTU(s.Device, mtu)

	case entities.CategoryOffload:
		enabled, err := ParseFeatureState(s.Value)
		if err != nil {
			return err
		}
		return m.nic.SetFeature(s.Device, s.Name, enabled)

	case entities.CategoryCoalesce:
		v, err := ParseCoalesceValue(s.Name, s.Value)
		if err != nil {
			return err
		}
		return m.nic.SetCoalesce(s.Device, s.Name, v)

	case entities.CategoryIRQAffinity:
		irq, err := strconv.Atoi(s.Name)
		if err != nil {
			return err
		}
		return m.kernel.WriteIRQAffinity(irq, s.Value)
	}
	return fmt.Errorf("unknown category %s", s.Category)
}
