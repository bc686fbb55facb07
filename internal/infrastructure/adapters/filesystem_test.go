package adapters

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealFileSystem_WriteFileCreatesParentsAndReplaces(t *testing.T) {
	fs := NewRealFileSystem()
	path := filepath.Join(t.TempDir(), "etc", "sysctl.d", "99-nettune.conf")

	require.NoError(t, fs.WriteFile(path, []byte("a = 1\n"), 0644))
	require.NoError(t, fs.WriteFile(path, []byte("a = 2\n"), 0644))

	data, err := fs.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a = 2\n", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())

	// 임시 파일이 남지 않아야 합니다
	files, err := fs.ListFiles(filepath.Dir(path))
	require.NoError(t, err)
	assert.Equal(t, []string{"99-nettune.conf"}, files)
}

func TestRealFileSystem_ExistsAndRemove(t *testing.T) {
	fs := NewRealFileSystem()
	path := filepath.Join(t.TempDir(), "unit.service")

	assert.False(t, fs.Exists(path))
	require.NoError(t, fs.WriteFile(path, []byte("x"), 0644))
	assert.True(t, fs.Exists(path))
	require.NoError(t, fs.Remove(path))
	assert.False(t, fs.Exists(path))
}

func TestIsKernelPath(t *testing.T) {
	assert.True(t, isKernelPath("/proc/irq/34/smp_affinity_list"))
	assert.True(t, isKernelPath("/sys/class/net/eth0/mtu"))
	assert.False(t, isKernelPath("/etc/sysctl.d/99-nettune.conf"))
	assert.False(t, isKernelPath("/procfs/x"))
}

func TestRealCommandExecutor_Failure(t *testing.T) {
	executor := NewRealCommandExecutor(0)
	_, err := executor.Execute(context.Background(), "/nonexistent/nettune-test-binary")
	assert.Error(t, err)
}
