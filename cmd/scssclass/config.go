package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/gnana997/scssclass/pkg/indexer"
	"github.com/gnana997/scssclass/pkg/scanner"
	"github.com/gnana997/scssclass/pkg/util"
)

const (
	configDirName  = ".scssclass"
	configFileName = "config.yaml"
)

// ProjectConfig holds the contents of .scssclass/config.yaml.
type ProjectConfig struct {
	Version      string    `yaml:"version"`
	Root         string    `yaml:"root"`
	Subdirectory string    `yaml:"subdirectory"`
	Include      []string  `yaml:"include"`
	Exclude      []string  `yaml:"exclude"`
	Workers      int       `yaml:"workers"`
	CacheSize    int       `yaml:"cache_size"`
	DebounceMs   int       `yaml:"debounce_ms"`
	CatalogPath  string    `yaml:"catalog_path"`
	MCPLog       string    `yaml:"mcp_log"`
	Log          LogConfig `yaml:"log"`
}

// LogConfig is the log section of the project config.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// defaultProjectConfig is the file `scssclass init` writes.
func defaultProjectConfig() *ProjectConfig {
	scan := scanner.DefaultScanConfig()
	return &ProjectConfig{
		Version:     "1",
		Root:        ".",
		Include:     scan.Include,
		Exclude:     scan.Exclude,
		Workers:     0,
		CacheSize:   indexer.DefaultClassIndexConfig().CacheSize,
		DebounceMs:  indexer.DefaultWatchOptions().DebounceMs,
		CatalogPath: filepath.Join(configDirName, "classes.json"),
		Log:         LogConfig{Level: "info", Format: "text"},
	}
}

// configPath returns the config file location under baseDir.
func configPath(baseDir string) string {
	return filepath.Join(baseDir, configDirName, configFileName)
}

// loadProjectConfig reads .scssclass/config.yaml from baseDir.
// Returns nil (no error) if the file does not exist.
func loadProjectConfig(baseDir string) (*ProjectConfig, error) {
	path := configPath(baseDir)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}
	return &cfg, nil
}

// writeProjectConfig writes cfg under baseDir. An existing file is only
// replaced when force is set.
func writeProjectConfig(baseDir string, cfg *ProjectConfig, force bool) (string, error) {
	path := configPath(baseDir)
	if _, err := os.Stat(path); err == nil && !force {
		return "", fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// settings is the resolved configuration of one command invocation.
type settings struct {
	scan        scanner.ScanConfig
	index       indexer.ClassIndexConfig
	watch       indexer.WatchOptions
	catalogPath string
	mcpLog      string
	log         util.LoggerConfig
}

// resolveSettings applies the fallback chain for every value:
//  1. Explicit flag
//  2. .scssclass/config.yaml under baseDir
//  3. Built-in default
//
// Relative paths from the config file resolve against baseDir.
func resolveSettings(f *cliFlags, baseDir string) (*settings, error) {
	cfg, err := loadProjectConfig(baseDir)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = &ProjectConfig{}
	}
	def := defaultProjectConfig()

	s := &settings{
		scan:  scanner.DefaultScanConfig(),
		index: indexer.DefaultClassIndexConfig(),
		watch: indexer.DefaultWatchOptions(),
	}

	s.scan.Root = pickPath(f, "root", cfg.Root, def.Root, baseDir)
	s.scan.Subdirectory = pick(f, "subdir", cfg.Subdirectory, "")
	if len(cfg.Include) > 0 {
		s.scan.Include = cfg.Include
	}
	if len(cfg.Exclude) > 0 {
		s.scan.Exclude = cfg.Exclude
	}

	if s.index.Workers, err = pickInt(f, "workers", cfg.Workers, 0); err != nil {
		return nil, err
	}
	if s.index.CacheSize, err = pickInt(f, "cache-size", cfg.CacheSize, def.CacheSize); err != nil {
		return nil, err
	}
	if s.watch.DebounceMs, err = pickInt(f, "debounce", cfg.DebounceMs, def.DebounceMs); err != nil {
		return nil, err
	}
	s.index.Debug = f.Bool("debug")

	s.catalogPath = pickPath(f, "catalog", cfg.CatalogPath, def.CatalogPath, baseDir)
	s.mcpLog = pickPath(f, "mcp-log", cfg.MCPLog, "", baseDir)

	level := pick(f, "log-level", cfg.Log.Level, "")
	if f.Bool("debug") {
		level = "debug"
	}
	if s.log, err = util.ParseLoggerConfig(level, pick(f, "log-format", cfg.Log.Format, "")); err != nil {
		return nil, err
	}

	if err := scanner.ValidatePatterns(s.scan); err != nil {
		return nil, err
	}
	return s, nil
}

// logger builds the command's logger and installs it as the slog default.
func (s *settings) logger() *slog.Logger {
	logger := util.NewLogger(s.log)
	util.SetDefault(logger)
	return logger
}

func pick(f *cliFlags, flag, fromConfig, def string) string {
	if v, ok := f.String(flag); ok {
		return v
	}
	if fromConfig != "" {
		return fromConfig
	}
	return def
}

// pickPath is pick for paths: config and default values are relative to
// baseDir, flag values to the working directory.
func pickPath(f *cliFlags, flag, fromConfig, def, baseDir string) string {
	if v, ok := f.String(flag); ok {
		return v
	}
	v := fromConfig
	if v == "" {
		v = def
	}
	if v == "" || filepath.IsAbs(v) {
		return v
	}
	return filepath.Join(baseDir, v)
}

func pickInt(f *cliFlags, flag string, fromConfig, def int) (int, error) {
	v, ok, err := f.Int(flag)
	if err != nil {
		return 0, err
	}
	if ok {
		return v, nil
	}
	if fromConfig != 0 {
		return fromConfig, nil
	}
	return def, nil
}
