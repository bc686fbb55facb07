package usecases

import (
	"context"
	"errors"
	"testing"

	"nettune/internal/domain/entities"
	domainErrors "nettune/internal/domain/errors"
	"nettune/internal/domain/interfaces"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBootPersistence_Install(t *testing.T) {
	tests := []struct {
		name     string
		input    BootPersistenceInput
		wantSpec interfaces.BootUnitSpec
	}{
		{
			name:     "인터페이스 자동 감지",
			input:    BootPersistenceInput{Profile: entities.ProfileLatency},
			wantSpec: interfaces.BootUnitSpec{Interface: "eth0", Profile: entities.ProfileLatency},
		},
		{
			name:     "MTU 포함",
			input:    BootPersistenceInput{Interface: "eth0", Profile: entities.ProfileThroughput, MTU: 9000},
			wantSpec: interfaces.BootUnitSpec{Interface: "eth0", Profile: entities.ProfileThroughput, MTU: 9000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			units := new(MockBootUnitManager)
			units.On("Install", mock.Anything, tt.wantSpec).Return("/etc/systemd/system/nettune-eth0.service", nil)

			uc := NewBootPersistenceUseCase(newFakeHost(), units, quietLogger())
			output, err := uc.Install(context.Background(), tt.input)

			require.NoError(t, err)
			assert.True(t, output.Installed)
			assert.Equal(t, "eth0", output.Interface)
			assert.Equal(t, "/etc/systemd/system/nettune-eth0.service", output.UnitPath)
			units.AssertExpectations(t)
		})
	}
}

func TestBootPersistence_InstallRejectsInvalidMTU(t *testing.T) {
	units := new(MockBootUnitManager)
	uc := NewBootPersistenceUseCase(newFakeHost(), units, quietLogger())

	_, err := uc.Install(context.Background(), BootPersistenceInput{Profile: entities.ProfileBalanced, MTU: 80})

	require.Error(t, err)
	assert.True(t, domainErrors.IsValidationError(err))
	units.AssertNotCalled(t, "Install", mock.Anything, mock.Anything)
}

func TestBootPersistence_InstallFailure(t *testing.T) {
	units := new(MockBootUnitManager)
	units.On("Install", mock.Anything, mock.Anything).Return("", domainErrors.NewPersistenceError("unit write failed", errors.New("read-only file system")))

	uc := NewBootPersistenceUseCase(newFakeHost(), units, quietLogger())
	_, err := uc.Install(context.Background(), BootPersistenceInput{Profile: entities.ProfileBalanced})

	require.Error(t, err)
	assert.True(t, domainErrors.IsPersistenceError(err))
}

func TestBootPersistence_Remove(t *testing.T) {
	units := newFakeBootUnits()
	uc := NewBootPersistenceUseCase(newFakeHost(), units, quietLogger())

	// 설치되지 않은 상태에서 삭제는 아무것도 하지 않습니다
	output, err := uc.Remove(context.Background(), BootPersistenceInput{})
	require.NoError(t, err)
	assert.False(t, output.Removed)

	_, err = uc.Install(context.Background(), BootPersistenceInput{Profile: entities.ProfileBalanced})
	require.NoError(t, err)

	output, err = uc.Remove(context.Background(), BootPersistenceInput{Interface: "eth0"})
	require.NoError(t, err)
	assert.True(t, output.Removed)
	assert.Empty(t, units.installed)
}

func TestBootPersistence_RemoveVanishedInterface(t *testing.T) {
	units := newFakeBootUnits()
	units.installed["eth1"] = interfaces.BootUnitSpec{Interface: "eth1", Profile: entities.ProfileThroughput}
	// 호스트에는 eth0만 남아 있습니다
	uc := NewBootPersistenceUseCase(newFakeHost(), units, quietLogger())

	output, err := uc.Remove(context.Background(), BootPersistenceInput{Interface: "eth1"})

	require.NoError(t, err)
	assert.Equal(t, "eth1", output.Interface)
	assert.True(t, output.Removed)
	assert.NotContains(t, units.installed, "eth1")
}

func TestBootPersistence_RemoveRejectsInvalidName(t *testing.T) {
	units := new(MockBootUnitManager)
	uc := NewBootPersistenceUseCase(newFakeHost(), units, quietLogger())

	_, err := uc.Remove(context.Background(), BootPersistenceInput{Interface: "../eth0"})

	require.Error(t, err)
	assert.True(t, domainErrors.IsValidationError(err))
	units.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything)
}

func TestBootPersistence_InstallPassesPaths(t *testing.T) {
	units := new(MockBootUnitManager)
	want := interfaces.BootUnitSpec{
		Interface:  "eth0",
		Profile:    entities.ProfileBalanced,
		BackupDir:  "/srv/nettune/backups",
		ConfigRoot: "/srv/staging",
	}
	units.On("Install", mock.Anything, want).Return("/etc/systemd/system/nettune-eth0.service", nil)

	uc := NewBootPersistenceUseCase(newFakeHost(), units, quietLogger())
	_, err := uc.Install(context.Background(), BootPersistenceInput{
		Profile:    entities.ProfileBalanced,
		BackupDir:  "/srv/nettune/backups",
		ConfigRoot: "/srv/staging",
	})

	require.NoError(t, err)
	units.AssertExpectations(t)
}
