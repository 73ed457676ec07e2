package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWritesTemplateOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studylog", "config.json")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultServerAddr, cfg.Server.Addr)
	assert.Equal(t, DefaultTenantID, cfg.Outlook.TenantID)
	assert.Equal(t, DefaultOutlookSubject, cfg.Outlook.Subject)
	assert.Equal(t, "warn", cfg.Log.Level)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "// studylog configuration")
}

func TestTemplateParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(configTemplate), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, DefaultClientID, cfg.Outlook.ClientID)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := "// my settings\n{\n  // where data lives\n  \"data_dir\": \"/tmp/diary\",\n  \"outlook\": {\"subject\": \"Tutoring\"}\n}\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/diary", cfg.DataDir)
	assert.Equal(t, "Tutoring", cfg.Outlook.Subject)
	assert.Equal(t, DefaultTenantID, cfg.Outlook.TenantID)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"log": {"level": "info"}}`), 0o600))
	t.Setenv("STUDYLOG_LOG_LEVEL", "debug")
	t.Setenv("STUDYLOG_DATA_DIR", "/srv/studylog")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/srv/studylog", cfg.DataDir)
}

func TestLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadInvalidTimezone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"timezone": "Mars/Olympus"}`), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestStripLineComments(t *testing.T) {
	in := []byte("// header\n{\n   // indented\n  \"a\": \"http://x\"\n}")
	out := string(stripLineComments(in))
	assert.NotContains(t, out, "header")
	assert.NotContains(t, out, "indented")
	assert.Contains(t, out, `"a": "http://x"`)
}

func TestLocation(t *testing.T) {
	assert.Equal(t, "Asia/Tokyo", Config{Timezone: "Asia/Tokyo"}.Location().String())
	assert.Equal(t, "Local", Config{}.Location().String())
}
