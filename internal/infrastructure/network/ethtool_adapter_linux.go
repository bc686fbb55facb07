//go:build linux

package network

import (
	"fmt"

	"nettune/internal/domain/errors"

	"github.com/safchain/ethtool"
	"github.com/sirupsen/logrus"
)

// EthtoolAdapter는 ethtool ioctl로 NIC 오프로드와 코얼레싱을 다룹니다
type EthtoolAdapter struct {
	handle *ethtool.Ethtool
	logger *logrus.Logger
}

// NewEthtoolAdapter는 ethtool 핸들을 열어 새로운 EthtoolAdapter를 생성합니다
func NewEthtoolAdapter(logger *logrus.Logger) (*EthtoolAdapter, error) {
	h, err := ethtool.NewEthtool()
	if err != nil {
		return nil, errors.NewSystemError("ethtool 핸들 생성 실패", err)
	}
	return &EthtoolAdapter{handle: h, logger: logger}, nil
}

// Close는 ethtool 핸들을 닫습니다
func (a *EthtoolAdapter) Close() {
	a.handle.Close()
}

// DriverName은 인터페이스의 드라이버 이름을 반환합니다
func (a *EthtoolAdapter) DriverName(iface string) (string, error) {
	name, err := a.handle.DriverName(iface)
	if err != nil {
		return "", errors.NewSystemError(fmt.Sprintf("%s 드라이버 조회 실패", iface), err)
	}
	return name, nil
}

// Features는 축약 이름 기준의 오프로드 상태를 반환합니다
func (a *EthtoolAdapter) Features(iface string) (map[string]bool, error) {
	kernel, err := a.handle.Features(iface)
	if err != nil {
		return nil, errors.NewSystemError(fmt.Sprintf("%s 기능 조회 실패", iface), err)
	}
	return shortFeatures(kernel), nil
}

// SetFeature는 오프로드 기능 하나를 켜거나 끕니다. 고정(fixed) 기능은 드라이버가 거부합니다.
func (a *EthtoolAdapter) SetFeature(iface, feature string, enabled bool) error {
	kernel, err := a.handle.Features(iface)
	if err != nil {
		return errors.NewMutationError(fmt.Sprintf("%s 기능 조회 실패", iface), err)
	}
	change, err := kernelFeatureChange(kernel, feature, enabled)
	if err != nil {
		return errors.NewMutationError(fmt.Sprintf("ethtool -K %s %s", iface, feature), err)
	}

	a.logger.WithFields(logrus.Fields{
		"interface": iface,
		"features":  change,
	}).Debug("ethtool 기능 변경")

	if err := a.handle.Change(iface, change); err != nil {
		return errors.NewMutationError(fmt.Sprintf("ethtool -K %s %s %s 실패", iface, feature, FormatFeatureState(enabled)), err)
	}
	return nil
}

// Coalesce는 지원하는 코얼레싱 파라미터의 현재 값을 반환합니다
func (a *EthtoolAdapter) Coalesce(iface string) (map[string]uint32, error) {
	c, err := a.handle.GetCoalesce(iface)
	if err != nil {
		return nil, errors.NewSystemError(fmt.Sprintf("%s 코얼레싱 조회 실패", iface), err)
	}
	out := make(map[string]uint32, len(CoalesceParams))
	for _, param := range CoalesceParams {
		v, _ := coalesceField(&c, param)
		out[param] = *v
	}
	return out, nil
}

// SetCoalesce는 현재 코얼레싱 설정에서 파라미터 하나만 바꿔 다시 씁니다
func (a *EthtoolAdapter) SetCoalesce(iface, param string, value uint32) error {
	c, err := a.handle.GetCoalesce(iface)
	if err != nil {
		return errors.NewMutationError(fmt.Sprintf("%s 코얼레싱 조회 실패", iface), err)
	}
	field, ok := coalesceField(&c, param)
	if !ok {
		return errors.NewMutationError(fmt.Sprintf("지원하지 않는 코얼레싱 파라미터: %s", param), nil)
	}
	*field = value
	if _, err := a.handle.SetCoalesce(iface, c); err != nil {
		return errors.NewMutationError(fmt.Sprintf("ethtool -C %s %s %s 실패", iface, param, FormatCoalesceValue(param, value)), err)
	}
	return nil
}

func coalesceField(c *ethtool.Coalesce, param string) (*uint32, bool) {
	switch param {
	case "adaptive-rx":
		return &c.UseAdaptiveRxCoalesce, true
	case "adaptive-tx":
		return &c.UseAdaptiveTxCoalesce, true
	case "rx-usecs":
		return &c.RxCoalesceUsecs, true
	case "tx-usecs":
		return &c.TxCoalesceUsecs, true
	case "rx-frames":
		return &c.RxMaxCoalescedFrames, true
	case "tx-frames":
		return &c.TxMaxCoalescedFrames, true
	}
	var unused uint32
	return &unused, false
}
