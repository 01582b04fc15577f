package config

import "flag"

// Flags holds command-line overrides for one command invocation.
type Flags struct {
	ConfigPath string
	Debug      bool
	OutputDir  string
	Package    string
	Physics    bool
	NoLights   bool
	LogFile    string
}

// BindFlags registers the shared export flags on fs.
func BindFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.ConfigPath, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.OutputDir, "out", "", "Output directory")
	fs.StringVar(&f.Package, "package", "", "Package name for all asset categories")
	fs.BoolVar(&f.Physics, "physics", false, "Export physics bodies and collision shapes")
	fs.BoolVar(&f.NoLights, "no-lights", false, "Skip light objects")
	fs.StringVar(&f.LogFile, "log", "", "Write logs to file")
	return f
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.OutputDir != "" {
		cfg.Export.OutputDir = f.OutputDir
	}
	if f.Package != "" {
		cfg.Export.Package = f.Package
		cfg.Export.ImagePackage = f.Package
		cfg.Export.MeshPackage = f.Package
	}
	if f.Physics {
		cfg.Export.Physics = true
	}
	if f.NoLights {
		cfg.Light.Export = false
	}
	if f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
}
