package interfaces

import "context"

// LinkManager는 netlink를 통한 링크/라우트/qdisc 조회 및 변경 인터페이스입니다
type LinkManager interface {
	// DefaultRouteInterface는 기본 라우트가 가리키는 인터페이스 이름을 반환합니다
	DefaultRouteInterface() (string, error)

	// LinkMTU는 인터페이스의 현재 MTU를 반환합니다. 인터페이스가 없으면 에러입니다.
	LinkMTU(name string) (int, error)

	// SetLinkMTU는 인터페이스 MTU를 변경합니다
	SetLinkMTU(name string, mtu int) error

	// RootQdisc는 인터페이스 루트 qdisc 종류(fq_codel, cake 등)를 반환합니다
	RootQdisc(name string) (string, error)
}

// NICManager는 ethtool을 통한 NIC 오프로드/코얼레싱 인터페이스입니다.
// 기능 이름은 ethtool -K 축약형(gro, gso, tso, lro 등)을,
// 코얼레싱 파라미터는 ethtool -C 이름(rx-usecs, adaptive-rx 등)을 사용합니다.
type NICManager interface {
	DriverName(iface string) (string, error)
	Features(iface string) (map[string]bool, error)
	SetFeature(iface, feature string, enabled bool) error
	Coalesce(iface string) (map[string]uint32, error)
	SetCoalesce(iface, param string, value uint32) error
	Close()
}

// KernelManager는 sysctl, 커널 모듈, 트래픽 제어, IRQ 친화도를 다룹니다
type KernelManager interface {
	ReadSysctl(key string) (string, error)
	WriteSysctl(ctx context.Context, key, value string) error
	// ReloadSysctl은 sysctl --system으로 모든 설정 파일을 다시 읽습니다
	ReloadSysctl(ctx context.Context) error

	// ModuleLoaded는 모듈이 로드되어 있거나 커널에 빌트인인지 확인합니다
	ModuleLoaded(name string) bool
	// ModuleAvailable은 모듈이 로드되어 있거나 로드 가능한지 확인합니다
	ModuleAvailable(ctx context.Context, name string) (bool, error)
	LoadModule(ctx context.Context, name string) error
	AvailableCongestionControls() ([]string, error)

	SetRootQdisc(ctx context.Context, iface, qdisc string) error

	InterfaceIRQs(iface string) ([]int, error)
	ReadIRQAffinity(irq int) (string, error)
	WriteIRQAffinity(irq int, cpuList string) error
	CPUCount() int
}
