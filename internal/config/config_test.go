package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ConfigSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

func (s *ConfigSuite) TestDefaults() {
	cfg := Default()

	s.Equal("127.0.0.1:7777", cfg.Server.Addr)
	s.Equal("memory", cfg.Storage.Type)
	s.False(cfg.DebugAPI.Enabled)
	s.Equal(8737, cfg.DebugAPI.Port)
	s.Equal("info", cfg.Log.Level)
}

func (s *ConfigSuite) TestEnvOverridesDefaults() {
	s.T().Setenv("RIICHI_SERVER", "game.example.com:7777")
	s.T().Setenv("RIICHI_STORAGE", "redis")

	cfg := Default()
	s.Equal("game.example.com:7777", cfg.Server.Addr)
	s.Equal("redis", cfg.Storage.Type)
}

func (s *ConfigSuite) TestLoadMissingFileKeepsDefaults() {
	cfg, err := Load(filepath.Join(s.T().TempDir(), "absent.yaml"))
	s.Require().NoError(err)
	s.Equal(Default(), cfg)
}

func (s *ConfigSuite) TestLoadEmptyPathKeepsDefaults() {
	cfg, err := Load("")
	s.Require().NoError(err)
	s.Equal(Default(), cfg)
}

func (s *ConfigSuite) TestLoadLayersFileOverDefaults() {
	path := filepath.Join(s.T().TempDir(), "config.yaml")
	s.Require().NoError(os.WriteFile(path, []byte(`
server:
  addr: game.example.com:9999
debug_api:
  enabled: true
  port: 9000
log:
  level: debug
`), 0o644))

	cfg, err := Load(path)
	s.Require().NoError(err)

	s.Equal("game.example.com:9999", cfg.Server.Addr)
	s.True(cfg.DebugAPI.Enabled)
	s.Equal(9000, cfg.DebugAPI.Port)
	s.Equal("debug", cfg.Log.Level)
	s.Equal("memory", cfg.Storage.Type, "untouched sections keep defaults")
}

func (s *ConfigSuite) TestLoadRejectsBadYAML() {
	path := filepath.Join(s.T().TempDir(), "config.yaml")
	s.Require().NoError(os.WriteFile(path, []byte("server: ["), 0o644))

	_, err := Load(path)
	s.Error(err)
}

func (s *ConfigSuite) TestSlogLevel() {
	s.Equal(slog.LevelDebug, LogConfig{Level: "debug"}.SlogLevel())
	s.Equal(slog.LevelWarn, LogConfig{Level: "warn"}.SlogLevel())
	s.Equal(slog.LevelError, LogConfig{Level: "error"}.SlogLevel())
	s.Equal(slog.LevelInfo, LogConfig{Level: "info"}.SlogLevel())
	s.Equal(slog.LevelInfo, LogConfig{Level: ""}.SlogLevel())
}
