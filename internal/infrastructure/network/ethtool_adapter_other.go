//go:build !linux

package network

import (
	"nettune/internal/domain/errors"

	"github.com/sirupsen/logrus"
)

// EthtoolAdapter는 Linux가 아닌 환경의 스텁입니다
type EthtoolAdapter struct{}

// NewEthtoolAdapter는 항상 실패합니다. 팩토리는 대신 unavailableNIC를 사용합니다.
func NewEthtoolAdapter(logger *logrus.Logger) (*EthtoolAdapter, error) {
	return nil, errors.NewUnsupportedFeatureError("ethtool은 Linux에서만 지원됩니다")
}

func (a *EthtoolAdapter) Close() {}

func (a *EthtoolAdapter) DriverName(string) (string, error) {
	return "", errors.NewUnsupportedFeatureError("ethtool unavailable")
}

func (a *EthtoolAdapter) Features(string) (map[string]bool, error) {
	return nil, errors.NewUnsupportedFeatureError("ethtool unavailable")
}

func (a *EthtoolAdapter) SetFeature(string, string, bool) error {
	return errors.NewUnsupportedFeatureError("ethtool unavailable")
}

func (a *EthtoolAdapter) Coalesce(string) (map[string]uint32, error) {
	return nil, errors.NewUnsupportedFeatureError("ethtool unavailable")
}

func (a *EthtoolAdapter) SetCoalesce(string, string, uint32) error {
	return errors.NewUnsupportedFeatureError("ethtool unavailable")
}
