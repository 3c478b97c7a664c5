package hiera_test

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeFixture lays out a hiera.yaml plus yaml and json data files and returns the config path.
func writeFixture(t *testing.T, extra string) string {
	t.Helper()

	dir := t.TempDir()
	datadir := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(datadir, 0o750))

	files := map[string]string{
		"production.yaml": "ntp_server: ntp.prod.example.com\n",
		"common.yaml":     "ntp_server: ntp.example.com\nclasses:\n  - base\nmotd: \"welcome to %{hostname}\"\n",
		"common.json":     `{"json_only": "from json", "classes": ["json"]}`,
	}

	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(datadir, name), []byte(content), 0o600))
	}

	cfg := strings.Join([]string{
		"backends:",
		"  - yaml",
		"  - json",
		"hierarchy:",
		`  - "%{environment}"`,
		"  - common",
		"yaml:",
		"  datadir: " + datadir,
		"json:",
		"  datadir: " + datadir,
		extra,
	}, "\n")

	path := filepath.Join(dir, "hiera.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))

	return path
}

func freePort(t *testing.T) string {
	t.Helper()

	listenCfg := net.ListenConfig{}

	ln, err := listenCfg.Listen(context.Background(), "tcp", "127.0.0.1:0")
	require.NoError(t, err)

	defer func() { _ = ln.Close() }()

	return ln.Addr().String()
}
