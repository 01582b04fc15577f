// lite3dexport converts modeling-host scene snapshots into lite3d asset trees.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Faultbox/lite3d-exporter/internal/config"
	"github.com/Faultbox/lite3d-exporter/internal/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "export":
		cmdExport(args)
	case "watch":
		cmdWatch(args)
	case "info":
		cmdInfo(args)
	case "init-config":
		cmdInitConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`lite3dexport - lite3d scene exporter

Usage:
  lite3dexport <command> [options]

Commands:
  export [options] <snapshot.yaml>   Export a scene snapshot
  watch  [options] <snapshot.yaml>   Re-export whenever the snapshot changes
  info <file.m>                      Show mesh file header and chunks
  init-config [options] [file]       Write the effective config (default: user config dir)

Options (export, watch, init-config):
  -config <file>   Config file (default ./lite3dexport.yaml or the user config dir)
  -out <dir>       Output directory
  -package <name>  Package name for all asset categories
  -physics         Export physics bodies and collision shapes
  -no-lights       Skip light objects
  -debug           Debug logging
  -log <file>      Also write logs to file

Examples:
  lite3dexport export -out ./media scene.yaml
  lite3dexport watch -debug scene.yaml
  lite3dexport info media/models/meshes/Cube.m`)
}

// setup parses the shared flags, loads config and starts logging.
// It returns the config and the snapshot path.
func setup(name string, args []string) (*config.Config, string) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	flags := config.BindFlags(fs)
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: lite3dexport %s [options] <snapshot.yaml>\n", name)
		os.Exit(1)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: initializing logger: %v\n", err)
		os.Exit(1)
	}
	return cfg, fs.Arg(0)
}
