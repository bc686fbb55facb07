package container

import (
	"nettune/internal/application/usecases"
	"nettune/internal/domain/interfaces"
	"nettune/internal/domain/services"
	"nettune/internal/infrastructure/adapters"
	"nettune/internal/infrastructure/config"
	"nettune/internal/infrastructure/network"
	infraServices "nettune/internal/infrastructure/services"
	"nettune/pkg/utils"

	"github.com/sirupsen/logrus"
)

// Container는 의존성 주입을 관리하는 컨테이너입니다
type Container struct {
	config *config.Config
	logger *logrus.Logger

	// 인프라스트럭처 어댑터들
	fileSystem      interfaces.FileSystem
	commandExecutor interfaces.CommandExecutor
	clock           interfaces.Clock
	processInfo     interfaces.ProcessInfo

	// 시스템 관리자들
	adapterFactory *network.SystemAdapterFactory
	links          interfaces.LinkManager
	nic            interfaces.NICManager
	kernel         interfaces.KernelManager

	// 서비스들
	probe           *network.EnvironmentProbe
	mutator         *network.SystemMutator
	resolver        *services.ProfileResolver
	profileLoader   *config.ProfileLoader
	backupService   *infraServices.BackupService
	configService   *infraServices.PersistedConfigService
	bootUnitService *infraServices.BootUnitService

	// 유스케이스
	tuningEngine           *usecases.TuningEngine
	revertTuningUseCase    *usecases.RevertTuningUseCase
	statusUseCase          *usecases.StatusUseCase
	bootPersistenceUseCase *usecases.BootPersistenceUseCase
}

// NewContainer는 새로운 Container를 생성합니다
func NewContainer(cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	container := &Container{
		config: cfg,
		logger: logger,
	}

	if err := container.initializeInfrastructure(); err != nil {
		return nil, err
	}

	if err := container.initializeServices(); err != nil {
		return nil, err
	}

	if err := container.initializeUseCases(); err != nil {
		return nil, err
	}

	return container, nil
}

// initializeInfrastructure는 인프라스트럭처 컴포넌트들을 초기화합니다
func (c *Container) initializeInfrastructure() error {
	// 기본 어댑터들 초기화
	c.fileSystem = adapters.NewRealFileSystem()
	c.commandExecutor = adapters.NewRealCommandExecutor(c.config.Runtime.CommandTimeout)
	c.clock = adapters.NewRealClock()
	c.processInfo = adapters.NewRealProcessInfo()

	// 커널 경로는 Root와 무관하게 항상 실제 /proc, /sys를 사용합니다
	c.adapterFactory = network.NewSystemAdapterFactory(
		c.commandExecutor,
		c.fileSystem,
		c.logger,
		network.DefaultKernelPaths(c.config.Runtime.CommandTimeout),
	)
	c.links = c.adapterFactory.CreateLinkManager()
	c.nic = c.adapterFactory.CreateNICManager()
	c.kernel = c.adapterFactory.CreateKernelManager()

	return nil
}

// initializeServices는 서비스들을 초기화합니다
func (c *Container) initializeServices() error {
	cfg := c.config

	c.probe = network.NewEnvironmentProbe(c.links, c.nic, c.kernel, c.logger)
	c.mutator = network.NewSystemMutator(c.links, c.nic, c.kernel, c.logger)
	c.resolver = services.NewProfileResolver()
	c.profileLoader = config.NewProfileLoader(c.fileSystem, c.logger, cfg.Rooted(cfg.Paths.ProfileDir))

	c.backupService = infraServices.NewBackupService(
		c.fileSystem,
		c.clock,
		c.logger,
		cfg.Rooted(cfg.Paths.BackupDir),
	)

	c.configService = infraServices.NewPersistedConfigService(
		c.fileSystem,
		c.logger,
		cfg.Rooted(cfg.Paths.SysctlConfig),
		cfg.Rooted(cfg.Paths.ModulesConfig),
	)

	c.bootUnitService = infraServices.NewBootUnitService(
		c.commandExecutor,
		c.fileSystem,
		c.processInfo,
		c.logger,
		infraServices.BootUnitConfig{
			UnitDir:        cfg.Rooted(cfg.Paths.UnitDir),
			InstallPath:    cfg.Rooted(cfg.Paths.InstallPath),
			CommandTimeout: cfg.Runtime.CommandTimeout,
			Retry:          utils.DefaultRetryConfig,
		},
	)

	return nil
}

// initializeUseCases는 유스케이스들을 초기화합니다
func (c *Container) initializeUseCases() error {
	// 튜닝 엔진 (dry-run, apply)
	c.tuningEngine = usecases.NewTuningEngine(
		c.probe,
		c.resolver,
		c.profileLoader,
		c.mutator,
		c.backupService,
		c.configService,
		c.clock,
		c.logger,
	)

	// 되돌리기 유스케이스
	c.revertTuningUseCase = usecases.NewRevertTuningUseCase(
		c.configService,
		c.kernel,
		c.backupService,
		c.bootUnitService,
		c.probe,
		c.logger,
	)

	// 상태 조회 유스케이스
	c.statusUseCase = usecases.NewStatusUseCase(c.probe, c.bootUnitService, c.logger)

	// 부팅 유닛 유스케이스
	c.bootPersistenceUseCase = usecases.NewBootPersistenceUseCase(c.probe, c.bootUnitService, c.logger)

	return nil
}

// GetConfig는 설정을 반환합니다
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetProcessInfo는 프로세스 정보를 반환합니다
func (c *Container) GetProcessInfo() interfaces.ProcessInfo {
	return c.processInfo
}

// GetTuningEngine은 튜닝 엔진을 반환합니다
func (c *Container) GetTuningEngine() *usecases.TuningEngine {
	return c.tuningEngine
}

// GetRevertTuningUseCase는 되돌리기 유스케이스를 반환합니다
func (c *Container) GetRevertTuningUseCase() *usecases.RevertTuningUseCase {
	return c.revertTuningUseCase
}

// GetStatusUseCase는 상태 조회 유스케이스를 반환합니다
func (c *Container) GetStatusUseCase() *usecases.StatusUseCase {
	return c.statusUseCase
}

// GetBootPersistenceUseCase는 부팅 유닛 유스케이스를 반환합니다
func (c *Container) GetBootPersistenceUseCase() *usecases.BootPersistenceUseCase {
	return c.bootPersistenceUseCase
}

// Close는 컨테이너를 정리합니다
func (c *Container) Close() error {
	if c.nic != nil {
		c.nic.Close()
	}
	return nil
}
