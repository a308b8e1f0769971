package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Export.Output != "" {
		t.Errorf("expected empty output, got %s", cfg.Export.Output)
	}
	if cfg.Export.Workers != 0 {
		t.Errorf("expected workers 0, got %d", cfg.Export.Workers)
	}
	if cfg.Export.StrictNames {
		t.Error("expected strict_names to be false by default")
	}
	if cfg.Export.SkipOversized {
		t.Error("expected skip_oversized to be false by default")
	}
	if cfg.Watch.Debounce != 250*time.Millisecond {
		t.Errorf("expected debounce 250ms, got %v", cfg.Watch.Debounce)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), FileName)

	yamlContent := `
export:
  output: out/level.rscn
  workers: 4
  strict_names: true
  skip_oversized: true
  generator: "Blender 4.1.0"

watch:
  debounce: 1s

logging:
  level: "debug"
  log_file: "rscn.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Export.Output != "out/level.rscn" {
		t.Errorf("expected output out/level.rscn, got %s", cfg.Export.Output)
	}
	if cfg.Export.Workers != 4 {
		t.Errorf("expected workers 4, got %d", cfg.Export.Workers)
	}
	if !cfg.Export.StrictNames || !cfg.Export.SkipOversized {
		t.Error("expected strict_names and skip_oversized to be true")
	}
	if cfg.Export.Generator != "Blender 4.1.0" {
		t.Errorf("expected generator 'Blender 4.1.0', got %s", cfg.Export.Generator)
	}
	if cfg.Watch.Debounce != time.Second {
		t.Errorf("expected debounce 1s, got %v", cfg.Watch.Debounce)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "rscn.log" {
		t.Errorf("expected log file 'rscn.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.yaml")

	invalidYAML := `
export:
  workers: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/rscn.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	if err := os.WriteFile(FileName, []byte("export:\n  workers: 2\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Errorf("expected to find %s in current directory", FileName)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		verify func(*testing.T, *Config)
	}{
		{
			name: "debug flag",
			args: []string{"-debug"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
		},
		{
			name: "output flag",
			args: []string{"-o", "build/scene.rscn"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Export.Output != "build/scene.rscn" {
					t.Errorf("expected output build/scene.rscn, got %s", cfg.Export.Output)
				}
			},
		},
		{
			name: "workers flag",
			args: []string{"-j", "8"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Export.Workers != 8 {
					t.Errorf("expected workers 8, got %d", cfg.Export.Workers)
				}
			},
		},
		{
			name: "name and size flags",
			args: []string{"-strict-names", "-skip-oversized"},
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Export.StrictNames {
					t.Error("expected strict_names with -strict-names")
				}
				if !cfg.Export.SkipOversized {
					t.Error("expected skip_oversized with -skip-oversized")
				}
			},
		},
		{
			name: "log file flag",
			args: []string{"-log-file", "x.log"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.LogFile != "x.log" {
					t.Errorf("expected log file x.log, got %s", cfg.Logging.LogFile)
				}
			},
		},
		{
			name: "no flags",
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "info" || cfg.Export.Workers != 0 {
					t.Errorf("defaults changed without flags: %+v", cfg)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := flag.NewFlagSet("test", flag.ContinueOnError)
			flags := RegisterFlags(fs)
			if err := fs.Parse(tt.args); err != nil {
				t.Fatalf("parse: %v", err)
			}

			cfg := Default()
			flags.apply(cfg)

			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), FileName)

	yamlContent := `
export:
  workers: 2
  output: from-file.rscn
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	flags := RegisterFlags(fs)
	if err := fs.Parse([]string{"-config", configPath, "-j", "6"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	cfg, err := Load(flags)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Flag wins over file.
	if cfg.Export.Workers != 6 {
		t.Errorf("expected workers 6 from flag, got %d", cfg.Export.Workers)
	}
	if cfg.Export.Output != "from-file.rscn" {
		t.Errorf("expected output from file, got %s", cfg.Export.Output)
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)

	cfg := Default()
	cfg.Export.Workers = 3
	cfg.Export.Generator = "test"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	got := Default()
	if err := loadFromFile(got, path); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Export.Workers != 3 || got.Export.Generator != "test" {
		t.Errorf("reloaded config mismatch: %+v", got.Export)
	}
}
