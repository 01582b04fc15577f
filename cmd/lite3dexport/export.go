package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/lite3d-exporter/internal/config"
	"github.com/Faultbox/lite3d-exporter/internal/host"
	"github.com/Faultbox/lite3d-exporter/internal/logger"
	"github.com/Faultbox/lite3d-exporter/internal/scene"
)

func cmdExport(args []string) {
	cfg, snapshot := setup("export", args)
	defer logger.Sync()

	if err := runExport(cfg, snapshot); err != nil {
		logger.Sync()
		os.Exit(1)
	}
}

// runExport performs one export run with a fresh session.
func runExport(cfg *config.Config, snapshot string) error {
	sc, err := host.Load(snapshot)
	if err != nil {
		logger.Error("loading snapshot failed", zap.String("path", snapshot), zap.Error(err))
		return err
	}

	session, err := scene.NewSession(cfg)
	if err != nil {
		logger.Error("invalid export settings", zap.Error(err))
		return err
	}

	rep, err := session.ExportScene(sc)
	if err != nil {
		logger.Error("export failed", zap.String("scene", sc.Name), zap.String("trace", fmt.Sprintf("%+v", err)))
		return err
	}

	for _, skipped := range rep.SkippedErrors() {
		logger.Warn("skipped", zap.Error(skipped))
	}
	return nil
}
