package gkibuild

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/outofforest/gkibuild/pkg/test"
)

func toolchainArchive(t *testing.T) []byte {
	clang := "#!/bin/sh\necho 'fake clang version 17.0.2'\n"

	buf := &bytes.Buffer{}
	gw := gzip.NewWriter(buf)
	tw := tar.NewWriter(gw)
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Typeflag: tar.TypeReg,
		Name:     "bin/clang",
		Size:     int64(len(clang)),
		Mode:     0o755,
	}))
	_, err := tw.Write([]byte(clang))
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, gw.Close())
	return buf.Bytes()
}

func fakeKernelTree(t *testing.T, dir string) string {
	script := "#!/bin/sh\n" +
		"mkdir -p out/arch/arm64/boot\n" +
		"printf 'Linux version 5.15.137-gki (build@ci) #1 SMP\\n' > out/arch/arm64/boot/Image\n"
	makePath := filepath.Join(dir, "fakemake")
	require.NoError(t, os.WriteFile(makePath, []byte(script), 0o755))
	return makePath
}

func fakeTemplate(t *testing.T, dir string) {
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git", "HEAD"), []byte("ref\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "anykernel.sh"), []byte("# backend\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# readme\n"), 0o600))
}

func TestBuildPipeline(t *testing.T) {
	ctx := test.Context(t)
	dir := t.TempDir()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(toolchainArchive(t))
	}))
	defer server.Close()

	templateDir := filepath.Join(dir, "AnyKernel3")
	fakeTemplate(t, templateDir)

	config := NewConfig(
		Toolchain(filepath.Join(dir, "clang"), server.URL+"/clang.tar.gz"),
		KernelSource(dir),
	)
	config.Kernel.Make = fakeKernelTree(t, dir)
	config.Kernel.LogPath = filepath.Join(dir, "build.log")
	config.AnyKernel.Dir = templateDir
	config.AnyKernel.OutputDir = dir

	require.NoError(t, Build(ctx, config))

	matches, err := filepath.Glob(filepath.Join(dir, "gki-*.zip"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	r, err := zip.OpenReader(matches[0])
	require.NoError(t, err)
	defer r.Close()

	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	require.ElementsMatch(t, []string{"anykernel.sh", "Image"}, names)
}

func TestBuildPipelineFailsWhenToolchainFetchFails(t *testing.T) {
	ctx := test.Context(t)
	dir := t.TempDir()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	config := NewConfig(
		Toolchain(filepath.Join(dir, "clang"), server.URL+"/clang.tar.gz"),
		KernelSource(dir),
	)
	config.Kernel.LogPath = filepath.Join(dir, "build.log")

	require.Error(t, Build(ctx, config))

	// Nothing past the toolchain step may have run.
	_, err := os.Stat(config.Kernel.LogPath)
	require.True(t, os.IsNotExist(err))
}
