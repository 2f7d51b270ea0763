package kernel

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ridge/must"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/outofforest/gkibuild/pkg/test"
)

// fakeMake records each invocation and echoes its arguments, failing when the
// first argument matches the content of the fail marker file.
func fakeMake(t *testing.T, dir string) (makePath, callsPath, failPath string) {
	makePath = filepath.Join(dir, "make")
	callsPath = filepath.Join(dir, "calls")
	failPath = filepath.Join(dir, "fail")

	script := "#!/bin/sh\n" +
		"echo \"$@\" >> " + callsPath + "\n" +
		"echo \"building $4\"\n" +
		"if [ -e " + failPath + " ] && [ \"$4\" = \"$(cat " + failPath + ")\" ]; then\n" +
		"  echo 'error: build broke' >&2\n" +
		"  exit 2\n" +
		"fi\n"
	require.NoError(t, os.WriteFile(makePath, []byte(script), 0o755))

	return makePath, callsPath, failPath
}

func testConfig(t *testing.T) (Config, string, string) {
	dir := t.TempDir()
	makePath, callsPath, failPath := fakeMake(t, dir)

	config := DefaultConfig()
	config.SourceDir = dir
	config.Make = makePath
	config.Defconfig = "gki_defconfig"
	config.Jobs = 4
	config.LogPath = filepath.Join(dir, "build.log")

	return config, callsPath, failPath
}

func TestBuildRunsBothPhases(t *testing.T) {
	ctx := test.Context(t)
	config, callsPath, _ := testConfig(t)

	require.NoError(t, Build(ctx, config))

	calls := strings.Split(strings.TrimSpace(string(must.Bytes(os.ReadFile(callsPath)))), "\n")
	require.Len(t, calls, 2)
	require.Equal(t, "O=out ARCH=arm64 LLVM=1 gki_defconfig", calls[0])
	require.Equal(t, "O=out ARCH=arm64 LLVM=1 -j4", calls[1])

	logContent := string(must.Bytes(os.ReadFile(config.LogPath)))
	require.Contains(t, logContent, "building gki_defconfig")
	require.Contains(t, logContent, "building -j4")
}

func TestBuildAbortsAfterConfigurationFailure(t *testing.T) {
	ctx := test.Context(t)
	config, callsPath, failPath := testConfig(t)
	require.NoError(t, os.WriteFile(failPath, []byte("gki_defconfig"), 0o600))

	require.Error(t, Build(ctx, config))

	calls := strings.Split(strings.TrimSpace(string(must.Bytes(os.ReadFile(callsPath)))), "\n")
	require.Len(t, calls, 1)
}

func TestBuildFailsOnCompilationFailure(t *testing.T) {
	ctx := test.Context(t)
	config, callsPath, failPath := testConfig(t)
	require.NoError(t, os.WriteFile(failPath, []byte("-j4"), 0o600))

	require.Error(t, Build(ctx, config))

	calls := strings.Split(strings.TrimSpace(string(must.Bytes(os.ReadFile(callsPath)))), "\n")
	require.Len(t, calls, 2)

	// Output of the failed phase stays in the log for diagnosis.
	require.Contains(t, string(must.Bytes(os.ReadFile(config.LogPath))), "error: build broke")
}

func TestBuildTruncatesLog(t *testing.T) {
	ctx := test.Context(t)
	config, _, _ := testConfig(t)
	require.NoError(t, os.WriteFile(config.LogPath, []byte("stale output\n"), 0o600))

	require.NoError(t, Build(ctx, config))

	require.NotContains(t, string(must.Bytes(os.ReadFile(config.LogPath))), "stale output")
}

func TestFormatDuration(t *testing.T) {
	require.Equal(t, "2m 5s", formatDuration(125*time.Second))
	require.Equal(t, "0m 0s", formatDuration(0))
	require.Equal(t, "0m 59s", formatDuration(59*time.Second))
	require.Equal(t, "1m 0s", formatDuration(60*time.Second))
	require.Equal(t, "10m 1s", formatDuration(601*time.Second))
}

func TestStreamLoggerSplitsLines(t *testing.T) {
	log := zaptest.NewLogger(t)
	s := newStreamLogger(log)

	_, err := s.Write([]byte("first li"))
	require.NoError(t, err)
	require.NotEmpty(t, s.buf)

	_, err = s.Write([]byte("ne\nsecond line\ntail"))
	require.NoError(t, err)
	require.Equal(t, "tail", string(s.buf))

	s.Flush()
	require.Empty(t, s.buf)
}
