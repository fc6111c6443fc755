package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const minimalConfig = `
bot:
  token: "123456:ABC"
vault:
  admin_ids: [7]
  vault_channel_id: -1001000000001
  main_channel_id: -1001000000002
  force_join_channel: "@mychannel"
`

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, time.Hour, cfg.Retention.TTL)
	assert.Equal(t, time.Minute, cfg.Retention.ReaperInterval)
	assert.Equal(t, 5, cfg.Retention.MaxDeleteAttempts)
	assert.Equal(t, 10*time.Minute, cfg.Retention.PreviewTTL)
	assert.Equal(t, "8443", cfg.Bot.Webhook.ListenPort)
	assert.Equal(t, "INFO", cfg.Logger.Level)
	assert.Equal(t, "utf8mb4", cfg.Database.Charset)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig+`
retention:
  ttl: 30m
  reaper_interval: 10s
  max_delete_attempts: 2
`))
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, cfg.Retention.TTL)
	assert.Equal(t, 10*time.Second, cfg.Retention.ReaperInterval)
	assert.Equal(t, 2, cfg.Retention.MaxDeleteAttempts)
	assert.Equal(t, []int64{7}, cfg.Vault.AdminIDs)
	assert.Equal(t, int64(-1001000000001), cfg.Vault.VaultChannelID)
}

func TestLoadRejectsIncompleteConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "missing token",
			content: `
vault:
  admin_ids: [7]
  vault_channel_id: -1
  main_channel_id: -2
  force_join_channel: "@mychannel"
`,
		},
		{
			name: "missing admins",
			content: `
bot:
  token: "123456:ABC"
vault:
  vault_channel_id: -1
  main_channel_id: -2
  force_join_channel: "@mychannel"
`,
		},
		{
			name: "missing vault channel",
			content: `
bot:
  token: "123456:ABC"
vault:
  admin_ids: [7]
  main_channel_id: -2
  force_join_channel: "@mychannel"
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestIsAdmin(t *testing.T) {
	v := VaultConfig{AdminIDs: []int64{7, 8}}

	assert.True(t, v.IsAdmin(7))
	assert.True(t, v.IsAdmin(8))
	assert.False(t, v.IsAdmin(42))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadEmptyPath(t *testing.T) {
	_, err := Load("")
	assert.Error(t, err)
}
