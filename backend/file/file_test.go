package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/0xalexb/hjarta-hiera/backend"
	"github.com/0xalexb/hjarta-hiera/backend/file"
	"github.com/0xalexb/hjarta-hiera/config"
	"github.com/0xalexb/hjarta-hiera/hierarchy"
	"github.com/0xalexb/hjarta-hiera/scope"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var facts = scope.Map{"environment": "production", "fqdn": "web01"}

func writeData(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func newBackend(t *testing.T, format file.Format, root string) *file.Backend {
	t.Helper()

	cfg := &config.Hiera{
		BackendNames: []string{string(format)},
		Levels:       []string{"nodes/%{fqdn}", "%{environment}", "common"},
		Sections: map[string]map[string]any{
			string(format): {"datadir": root + "/%{environment}"},
		},
	}

	instance, err := file.New(string(format), format, hierarchy.NewBuilder(cfg), nil)
	require.NoError(t, err)

	return instance
}

func yamlFixture(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	dir := filepath.Join(root, "production")

	writeData(t, dir, "nodes/web01.yaml", `
motd: "welcome to %{fqdn}"
packages:
  - nginx
users:
  deploy: node
`)
	writeData(t, dir, "production.yaml", `
packages: [ntp, curl]
users:
  deploy: env
  backup: env
`)
	writeData(t, dir, "common.yaml", `
motd: common motd
timezone: UTC
packages: vim
users:
  root: common
`)

	return root
}

func TestBackend_Priority(t *testing.T) {
	t.Parallel()

	instance := newBackend(t, file.YAML, yamlFixture(t))

	answer, err := instance.Lookup(context.Background(), "motd", facts, "", backend.Priority)
	require.NoError(t, err)
	assert.Equal(t, "welcome to web01", answer)

	answer, err = instance.Lookup(context.Background(), "timezone", facts, "", backend.Priority)
	require.NoError(t, err)
	assert.Equal(t, "UTC", answer)

	answer, err = instance.Lookup(context.Background(), "missing", facts, "", backend.Priority)
	require.NoError(t, err)
	assert.Nil(t, answer)
}

func TestBackend_Array(t *testing.T) {
	t.Parallel()

	instance := newBackend(t, file.YAML, yamlFixture(t))

	answer, err := instance.Lookup(context.Background(), "packages", facts, "", backend.Array)
	require.NoError(t, err)
	assert.Equal(t, []any{"nginx", "ntp", "curl", "vim"}, answer)
}

func TestBackend_Hash(t *testing.T) {
	t.Parallel()

	instance := newBackend(t, file.YAML, yamlFixture(t))

	answer, err := instance.Lookup(context.Background(), "users", facts, "", backend.Hash)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"deploy": "node", "backup": "env", "root": "common"}, answer)

	_, err = instance.Lookup(context.Background(), "motd", facts, "", backend.Hash)
	require.ErrorIs(t, err, backend.ErrTypeMismatch)
}

func TestBackend_OrderOverride(t *testing.T) {
	t.Parallel()

	root := yamlFixture(t)
	writeData(t, filepath.Join(root, "production"), "override.yaml", "motd: overridden\n")

	instance := newBackend(t, file.YAML, root)

	answer, err := instance.Lookup(context.Background(), "motd", facts, "override", backend.Priority)
	require.NoError(t, err)
	assert.Equal(t, "overridden", answer)
}

func TestBackend_SourcesOutsideDatadirAreSkipped(t *testing.T) {
	t.Parallel()

	root := yamlFixture(t)
	writeData(t, root, "secret.yaml", "motd: hunter2\n")

	instance := newBackend(t, file.YAML, root)

	testCases := []struct {
		name     string
		sc       scope.Map
		override string
	}{
		{
			name: "scope value climbs out",
			sc:   scope.Map{"environment": "production", "fqdn": "../../secret"},
		},
		{
			name:     "order override climbs out",
			sc:       scope.Map{"environment": "production", "fqdn": "nobody"},
			override: "../secret",
		},
		{
			name:     "absolute looking override",
			sc:       scope.Map{"environment": "production", "fqdn": "nobody"},
			override: "/../../secret",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			answer, err := instance.Lookup(context.Background(), "motd", testCase.sc, testCase.override, backend.Priority)
			require.NoError(t, err)
			assert.Equal(t, "common motd", answer)
		})
	}
}

func TestBackend_EscapingSourcesAreNotCached(t *testing.T) {
	t.Parallel()

	root := yamlFixture(t)
	writeData(t, root, "secret.yaml", "motd: hunter2\n")

	instance := newBackend(t, file.YAML, root)

	_, err := instance.Lookup(context.Background(), "timezone", facts, "", backend.Priority)
	require.NoError(t, err)

	before := instance.Documents()

	_, err = instance.Lookup(context.Background(), "timezone", facts, "../secret", backend.Priority)
	require.NoError(t, err)
	assert.Equal(t, before, instance.Documents())
	assert.LessOrEqual(t, instance.Documents(), file.MaxDocuments)
}

func TestBackend_NestedSourceInsideDatadir(t *testing.T) {
	t.Parallel()

	instance := newBackend(t, file.YAML, yamlFixture(t))

	answer, err := instance.Lookup(context.Background(), "motd", facts, "nodes/../nodes/web01", backend.Priority)
	require.NoError(t, err)
	assert.Equal(t, "welcome to web01", answer)
}

func TestBackend_ReloadsChangedFiles(t *testing.T) {
	t.Parallel()

	root := yamlFixture(t)
	instance := newBackend(t, file.YAML, root)

	answer, err := instance.Lookup(context.Background(), "timezone", facts, "", backend.Priority)
	require.NoError(t, err)
	assert.Equal(t, "UTC", answer)

	path := writeData(t, filepath.Join(root, "production"), "common.yaml", "timezone: Europe/Amsterdam\n")
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, future, future))

	answer, err = instance.Lookup(context.Background(), "timezone", facts, "", backend.Priority)
	require.NoError(t, err)
	assert.Equal(t, "Europe/Amsterdam", answer)

	require.NoError(t, os.Remove(path))

	answer, err = instance.Lookup(context.Background(), "timezone", facts, "", backend.Priority)
	require.NoError(t, err)
	assert.Nil(t, answer)
}

func TestBackend_JSON(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	dir := filepath.Join(root, "production")
	writeData(t, dir, "production.json", `{"ports": [80, 443], "owner": "%{environment}-team"}`)
	writeData(t, dir, "common.json", `{"ports": [22], "owner": "ops"}`)

	instance := newBackend(t, file.JSON, root)

	answer, err := instance.Lookup(context.Background(), "owner", facts, "", backend.Priority)
	require.NoError(t, err)
	assert.Equal(t, "production-team", answer)

	answer, err = instance.Lookup(context.Background(), "ports", facts, "", backend.Array)
	require.NoError(t, err)
	assert.Equal(t, []any{float64(80), float64(443), float64(22)}, answer)
}

func TestBackend_InvalidDocument(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeData(t, filepath.Join(root, "production"), "common.json", `{"unterminated": `)

	instance := newBackend(t, file.JSON, root)

	_, err := instance.Lookup(context.Background(), "key", facts, "", backend.Priority)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "common.json")
}

func TestBackend_CancelledContext(t *testing.T) {
	t.Parallel()

	instance := newBackend(t, file.YAML, yamlFixture(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := instance.Lookup(ctx, "motd", facts, "", backend.Priority)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNew_UnknownFormat(t *testing.T) {
	t.Parallel()

	_, err := file.New("toml", file.Format("toml"), hierarchy.NewBuilder(&config.Hiera{}), nil)
	require.ErrorIs(t, err, file.ErrUnknownFormat)
}

func TestNewFactory(t *testing.T) {
	t.Parallel()

	factory := file.NewFactory("yaml", file.YAML, hierarchy.NewBuilder(&config.Hiera{}), nil)

	instance, err := factory()
	require.NoError(t, err)
	assert.IsType(t, &file.Backend{}, instance)
}
