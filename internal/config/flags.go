package config

import "flag"

// Flags holds command-line overrides registered on a command's flag set.
type Flags struct {
	Config        string
	Debug         bool
	Output        string
	Workers       int
	LogFile       string
	StrictNames   bool
	SkipOversized bool
}

// RegisterFlags adds the shared exporter flags to fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.Output, "o", "", "Output .rscn path")
	fs.IntVar(&f.Workers, "j", 0, "Parallel mesh builders (0 = GOMAXPROCS)")
	fs.StringVar(&f.LogFile, "log-file", "", "Also write logs to this file")
	fs.BoolVar(&f.StrictNames, "strict-names", false, "Fail on names that are not printable ASCII")
	fs.BoolVar(&f.SkipOversized, "skip-oversized", false, "Skip meshes with more than 65536 vertices")
	return f
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f == nil {
		return
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Output != "" {
		cfg.Export.Output = f.Output
	}
	if f.Workers > 0 {
		cfg.Export.Workers = f.Workers
	}
	if f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
	if f.StrictNames {
		cfg.Export.StrictNames = true
	}
	if f.SkipOversized {
		cfg.Export.SkipOversized = true
	}
}
