package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuromagic888-cloud/secretsync/internal/domain/model"
)

// allConfigKeys lists every env var that Load() reads.
var allConfigKeys = []string{
	"GITHUB_TOKEN",
	"GITHUB_REPOSITORY",
	"WORKFLOW_FILE",
	"WORKFLOW_REF",
	"NO_DISPATCH",
	"NOTION_TOKEN",
	"LINKCHECK_DB_ID",
	"RADAR_DB_ID",
	"PROJECT_TRACKER_DB_ID",
}

// isolateConfigEnv saves and unsets all config env vars so tests don't
// inherit values from the host environment (GITHUB_* vars in particular leak
// in from CI runners). t.Cleanup restores original values after the test.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func TestLoad_Success(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("GITHUB_TOKEN", "ghp_test123")
	t.Setenv("GITHUB_REPOSITORY", "owner/other-repo")
	t.Setenv("WORKFLOW_FILE", "custom.yml")
	t.Setenv("WORKFLOW_REF", "develop")
	t.Setenv("NOTION_TOKEN", "secret_notion")
	t.Setenv("LINKCHECK_DB_ID", "db-1")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "ghp_test123", cfg.Token)
	assert.Equal(t, "owner/other-repo", cfg.Repository)
	assert.Equal(t, "custom.yml", cfg.WorkflowFile)
	assert.Equal(t, "develop", cfg.Ref)
	assert.False(t, cfg.SkipDispatch)
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("GITHUB_TOKEN", "ghp_test123")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, DefaultRepository, cfg.Repository)
	assert.Equal(t, DefaultWorkflowFile, cfg.WorkflowFile)
	assert.Equal(t, DefaultRef, cfg.Ref)
	assert.False(t, cfg.SkipDispatch)
}

func TestLoad_MissingToken(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := Load()

	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrConfig)
	assert.Nil(t, cfg)
}

func TestLoad_NoDispatchFlag(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("GITHUB_TOKEN", "ghp_test123")
	t.Setenv("NO_DISPATCH", "1")

	cfg, err := Load()

	require.NoError(t, err)
	assert.True(t, cfg.SkipDispatch, "any non-empty NO_DISPATCH value skips dispatch")
}

func TestLoad_CredentialRoster(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("GITHUB_TOKEN", "ghp_test123")
	t.Setenv("NOTION_TOKEN", "secret_notion")
	t.Setenv("RADAR_DB_ID", "db-radar")

	cfg, err := Load()

	require.NoError(t, err)
	require.Len(t, cfg.Credentials, 4)

	byName := make(map[string]model.Credential, len(cfg.Credentials))
	for _, cred := range cfg.Credentials {
		byName[cred.Name] = cred
	}

	assert.True(t, byName["NOTION_TOKEN"].Required, "NOTION_TOKEN is the one required credential")
	assert.Equal(t, "secret_notion", byName["NOTION_TOKEN"].Value)
	assert.False(t, byName["LINKCHECK_DB_ID"].Required)
	assert.Empty(t, byName["LINKCHECK_DB_ID"].Value)
	assert.Equal(t, "db-radar", byName["RADAR_DB_ID"].Value)
	assert.False(t, byName["PROJECT_TRACKER_DB_ID"].Required)
}
