package constants

// 시스템 경로 상수들
const (
	// 도구가 소유하는 영속 설정 파일
	SysctlConfigPath  = "/etc/sysctl.d/99-nettune.conf"
	ModulesConfigPath = "/etc/modules-load.d/nettune.conf"

	// systemd 유닛 디렉토리와 부팅 시 사용할 고정 바이너리 경로
	SystemdUnitDir     = "/etc/systemd/system"
	DefaultInstallPath = "/usr/local/sbin/nettune"

	// 백업 디렉토리
	DefaultBackupDir = "/var/lib/nettune/backups"

	// 로그 파일
	DefaultLogFile = "/var/log/nettune.log"

	// 프로파일 오버라이드 디렉토리
	DefaultProfileDir = "/etc/nettune/profiles"

	// 커널 인터페이스 경로
	ProcSysDir     = "/proc/sys"
	ProcInterrupts = "/proc/interrupts"
	ProcIRQDir     = "/proc/irq"
	SysModuleDir   = "/sys/module"
	LibModulesDir  = "/lib/modules"
	SysClassNet    = "/sys/class/net"
)

// 튜닝 관련 상수들
const (
	// MTU 허용 범위 (IPv4 최소 재조립 크기 ~ 16비트 최대)
	MinMTU = 576
	MaxMTU = 65535

	// 커널 기능 대체값
	FallbackCongestionControl = "cubic"
	FallbackQdisc             = "fq_codel"

	// 파일 권한
	ConfigFilePermission = 0644
	BinaryPermission     = 0755

	// 타임아웃
	DefaultCommandTimeout = 30 // seconds
)

// 기본값 상수들
const (
	DefaultProfile  = "balanced"
	DefaultLogLevel = "info"
	UnitNamePrefix  = "nettune-"
	ManagedMarker   = "# managed by nettune - do not edit"
)
