package config_test

import (
	"testing"

	"github.com/0xalexb/hjarta-hiera/config"
	yamlparser "github.com/0xalexb/hjarta-hiera/config/parser/yaml"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticFetcher []byte

func (f staticFetcher) Fetch() ([]byte, error) {
	return f, nil
}

func loadHiera(t *testing.T, document, path string) (*config.Hiera, error) {
	t.Helper()

	return config.Provider(&config.Hiera{}, path)(yamlparser.NewParser(), staticFetcher(document))
}

func TestHiera_FullDocument(t *testing.T) {
	t.Parallel()

	cfg, err := loadHiera(t, `
backends:
  - yaml
  - redis
hierarchy:
  - "%{environment}"
  - common
yaml:
  datadir: /etc/hiera/%{environment}
redis:
  address: localhost:6379
  db: 2
`, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"yaml", "redis"}, cfg.Backends())

	levels, ok := cfg.Hierarchy()
	require.True(t, ok)
	assert.Equal(t, []string{"%{environment}", "common"}, levels)

	datadir, ok := config.StringSetting(cfg, "yaml", "datadir")
	require.True(t, ok)
	assert.Equal(t, "/etc/hiera/%{environment}", datadir)

	address, ok := cfg.Setting("redis", "address")
	require.True(t, ok)
	assert.Equal(t, "localhost:6379", address)

	_, ok = cfg.Setting("redis", "password")
	assert.False(t, ok)

	_, ok = cfg.Setting("json", "datadir")
	assert.False(t, ok)
}

func TestHiera_ColonPrefixedKeys(t *testing.T) {
	t.Parallel()

	cfg, err := loadHiera(t, `
":backends": json
":hierarchy": "%{::fqdn}"
":json":
  ":datadir": /var/lib/data
`, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"json"}, cfg.Backends())

	levels, ok := cfg.Hierarchy()
	require.True(t, ok)
	assert.Equal(t, []string{"%{::fqdn}"}, levels)

	datadir, ok := config.StringSetting(cfg, "json", "datadir")
	require.True(t, ok)
	assert.Equal(t, "/var/lib/data", datadir)
}

func TestHiera_DefaultsToYAMLBackend(t *testing.T) {
	t.Parallel()

	cfg, err := loadHiera(t, "yaml:\n  datadir: /tmp\n", "")
	require.NoError(t, err)

	assert.Equal(t, []string{config.DefaultBackend}, cfg.Backends())

	_, ok := cfg.Hierarchy()
	assert.False(t, ok, "hierarchy must stay unconfigured")
}

func TestHiera_EmptyHierarchyIsConfigured(t *testing.T) {
	t.Parallel()

	cfg, err := loadHiera(t, "backends: [yaml]\nhierarchy: []\n", "")
	require.NoError(t, err)

	levels, ok := cfg.Hierarchy()
	require.True(t, ok)
	assert.Empty(t, levels)
}

func TestHiera_EmbeddedSection(t *testing.T) {
	t.Parallel()

	cfg, err := loadHiera(t, `
listener:
  address: ":9090"
services:
  hiera:
    backends: [redis]
    hierarchy: [nodes/%{host}, common]
`, "services:hiera")
	require.NoError(t, err)

	assert.Equal(t, []string{"redis"}, cfg.Backends())

	levels, ok := cfg.Hierarchy()
	require.True(t, ok)
	assert.Equal(t, []string{"nodes/%{host}", "common"}, levels)
}

func TestHiera_ValidationErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		document string
		wantErr  error
	}{
		{
			name:     "empty backend name",
			document: "backends: [yaml, \"\"]\n",
			wantErr:  config.ErrEmptyBackendName,
		},
		{
			name:     "datadir must be a string",
			document: "yaml:\n  datadir: [a, b]\n",
			wantErr:  config.ErrInvalidSetting,
		},
		{
			name:     "backends as mapping",
			document: "backends:\n  yaml: true\n",
			wantErr:  config.ErrInvalidList,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			_, err := loadHiera(t, testCase.document, "")
			require.ErrorIs(t, err, testCase.wantErr)
		})
	}
}

func TestHiera_ValidateWithoutBackends(t *testing.T) {
	t.Parallel()

	cfg := &config.Hiera{}
	require.ErrorIs(t, cfg.Validate(), config.ErrNoBackends)

	require.True(t, cfg.SetDefaults())
	require.False(t, cfg.SetDefaults())
	require.NoError(t, cfg.Validate())
}

func TestStringSetting_IgnoresNonStrings(t *testing.T) {
	t.Parallel()

	cfg := &config.Hiera{
		Sections: map[string]map[string]any{
			"redis": {"db": uint64(3), "address": ""},
		},
	}

	_, ok := config.StringSetting(cfg, "redis", "db")
	assert.False(t, ok)

	_, ok = config.StringSetting(cfg, "redis", "address")
	assert.False(t, ok)
}
