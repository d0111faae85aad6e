package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
server:
  port_grpc: ${TEST_PORT_GRPC:-50051}
  port_http: 8080
  use_reflection: true
gateway:
  cors_allowed_origins: "http://localhost:3000, http://localhost:5173"
repository:
  backend: ${TEST_REPOSITORY_BACKEND:-memory}
database:
  driver: pgx
  dsn: ${TEST_DATABASE_DSN:-}
auth:
  jwt_secret: ${TEST_JWT_SECRET:-}
storage:
  backend: memory
  max_size: 5242880
  accepted_file_types: "image/*, .png"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestExpandEnvWithDefaults(t *testing.T) {
	t.Setenv("TEST_SET", "value")

	assert.Equal(t, "value", expandEnvWithDefaults("${TEST_SET:-fallback}"))
	assert.Equal(t, "fallback", expandEnvWithDefaults("${TEST_UNSET_VAR:-fallback}"))
	assert.Equal(t, "", expandEnvWithDefaults("${TEST_UNSET_VAR}"))
	assert.Equal(t, "postgres://value@host", expandEnvWithDefaults("postgres://${TEST_SET}@host"))
	assert.Equal(t, "plain", expandEnvWithDefaults("plain"))
}

func TestInitConfig_Defaults(t *testing.T) {
	cfg, err := InitConfig[Config](writeConfig(t, testConfig))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 50051, cfg.Server.PortGRPC)
	assert.True(t, cfg.Server.UseReflection)
	assert.Equal(t, BackendMemory, cfg.Repository.Backend)
	assert.Equal(t, int64(5242880), cfg.Storage.MaxSize)
	assert.Equal(t, []string{"image/*", ".png"}, cfg.Storage.AcceptedTypes())
}

func TestInitConfig_EnvOverrides(t *testing.T) {
	t.Setenv("TEST_PORT_GRPC", "6000")
	t.Setenv("TEST_REPOSITORY_BACKEND", "remote")
	t.Setenv("TEST_DATABASE_DSN", "postgres://localhost/posts")
	t.Setenv("TEST_JWT_SECRET", "secret")

	cfg, err := InitConfig[Config](writeConfig(t, testConfig))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 6000, cfg.Server.PortGRPC)
	assert.Equal(t, BackendRemote, cfg.Repository.Backend)
	assert.Equal(t, "postgres://localhost/posts", cfg.Database.DSN)
	assert.Equal(t, "secret", cfg.Auth.JWTSecret)
}

func TestValidate_RemoteRequiresDSNAndSecret(t *testing.T) {
	t.Setenv("TEST_REPOSITORY_BACKEND", "remote")

	cfg, err := InitConfig[Config](writeConfig(t, testConfig))
	require.NoError(t, err)
	assert.ErrorContains(t, cfg.Validate(), "database.dsn")

	cfg.Database.DSN = "postgres://localhost/posts"
	assert.ErrorContains(t, cfg.Validate(), "auth.jwt_secret")
}

func TestValidate_UnknownBackend(t *testing.T) {
	cfg := &Config{Repository: &ConfigRepository{Backend: "mongo"}}
	assert.ErrorContains(t, cfg.Validate(), "unknown repository.backend")

	cfg = &Config{Storage: &ConfigStorage{Backend: "remote"}}
	assert.ErrorContains(t, cfg.Validate(), "storage.base_url")
}

func TestInitConfig_MissingFile(t *testing.T) {
	_, err := InitConfig[Config](filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}
