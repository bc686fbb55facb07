package network

import (
	"nettune/internal/domain/errors"
	"nettune/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// SystemAdapterFactory는 링크, NIC, 커널 관리자를 생성하는 팩토리입니다
type SystemAdapterFactory struct {
	commandExecutor interfaces.CommandExecutor
	fileSystem      interfaces.FileSystem
	logger          *logrus.Logger
	kernelPaths     KernelPaths
}

// NewSystemAdapterFactory는 새로운 SystemAdapterFactory를 생성합니다
func NewSystemAdapterFactory(
	executor interfaces.CommandExecutor,
	fs interfaces.FileSystem,
	logger *logrus.Logger,
	kernelPaths KernelPaths,
) *SystemAdapterFactory {
	return &SystemAdapterFactory{
		commandExecutor: executor,
		fileSystem:      fs,
		logger:          logger,
		kernelPaths:     kernelPaths,
	}
}

// CreateLinkManager는 netlink 기반 LinkManager를 생성합니다
func (f *SystemAdapterFactory) CreateLinkManager() interfaces.LinkManager {
	return NewNetlinkAdapter(f.logger)
}

// CreateKernelManager는 KernelManager를 생성합니다
func (f *SystemAdapterFactory) CreateKernelManager() interfaces.KernelManager {
	return NewKernelAdapter(f.commandExecutor, f.fileSystem, f.logger, f.kernelPaths)
}

// CreateNICManager는 ethtool 기반 NICManager를 생성합니다.
// ethtool 핸들을 열 수 없으면 모든 조회와 변경이 실패하는 관리자를 반환하여
// sysctl 등 나머지 설정은 계속 진행되도록 합니다.
func (f *SystemAdapterFactory) CreateNICManager() interfaces.NICManager {
	adapter, err := NewEthtoolAdapter(f.logger)
	if err != nil {
		f.logger.WithError(err).Warn("ethtool을 사용할 수 없음, NIC 오프로드/코얼레싱 설정을 건너뜁니다")
		return &unavailableNIC{cause: err}
	}
	return adapter
}

// unavailableNIC는 ethtool 핸들이 없을 때 사용하는 NICManager입니다
type unavailableNIC struct {
	cause error
}

func (n *unavailableNIC) err() error {
	return errors.NewUnsupportedFeatureError("ethtool unavailable: " + n.cause.Error())
}

func (n *unavailableNIC) DriverName(string) (string, error)          { return "", n.err() }
func (n *unavailableNIC) Features(string) (map[string]bool, error)   { return nil, n.err() }
func (n *unavailableNIC) SetFeature(string, string, bool) error      { return n.err() }
func (n *unavailableNIC) Coalesce(string) (map[string]uint32, error) { return nil, n.err() }
func (n *unavailableNIC) SetCoalesce(string, string, uint32) error   { return n.err() }
func (n *unavailableNIC) Close()                                     {}
