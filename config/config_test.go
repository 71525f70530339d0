package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(nil)
	require.NoError(t, err)

	d := Defaults()
	assert.Equal(t, d.Service.BaseURL, cfg.Service.BaseURL)
	assert.Equal(t, "/api/shorten", cfg.Service.Path)
	assert.Zero(t, cfg.Service.Timeout)
	assert.Equal(t, 2*time.Second, cfg.Clipboard.CopiedReset)
	assert.Equal(t, "snipr.share", cfg.Share.Subject)
	assert.Equal(t, 7, cfg.Server.CodeLength)
}

func TestLoad_FileEnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	yaml := []byte("service:\n  base_url: https://yaml.example\n  timeout: 5s\nqr:\n  viewport_width: 480\nredis:\n  port: 6380\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644))

	t.Setenv("REDIS_PORT", "6390")
	t.Setenv("SNIPR_SHARE_SUBJECT", "team.links")

	fs := pflag.NewFlagSet("snipr", pflag.ContinueOnError)
	fs.String("service-url", "", "")
	fs.Int("viewport", 0, "")
	require.NoError(t, fs.Parse([]string{"--service-url", "https://flag.example"}))

	cfg, err := Load(fs)
	require.NoError(t, err)

	assert.Equal(t, "https://flag.example", cfg.Service.BaseURL, "flags win over file")
	assert.Equal(t, 5*time.Second, cfg.Service.Timeout)
	assert.Equal(t, 480, cfg.QR.ViewportWidth, "unset flag keeps file value")
	assert.Equal(t, 6390, cfg.Redis.Port, "legacy env name wins over file")
	assert.Equal(t, "team.links", cfg.Share.Subject)
}
