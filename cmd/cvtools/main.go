// cvtools demo: pinhole geometry, color and filter kernels on sample images
// License: MIT

package main

import (
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"cvtools/internal/config"
	"cvtools/internal/demo"
)

const (
	AppName    = "cvtools"
	AppVersion = "1.0.0"
)

func main() {
	imgPath := flag.String("img", "", "Path to a single image")
	all := flag.Bool("all", false, "Process every image in the data directory")
	dataDir := flag.String("data", "", "Data directory (overrides config)")
	outDir := flag.String("out", "", "Output directory (overrides config)")
	configPath := flag.String("config", "", "YAML configuration file")
	debugMode := flag.Bool("debug", false, "Enable debug mode with verbose logging")
	flag.Parse()

	logger := initLogger(*debugMode)
	logger.WithFields(logrus.Fields{
		"version":    AppVersion,
		"debug_mode": *debugMode,
	}).Info("Starting " + AppName)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *outDir != "" {
		cfg.OutputDir = *outDir
	}

	runner := demo.NewRunner(cfg, logger)
	if err := runner.Run(*imgPath, *all); err != nil {
		logger.WithError(err).Fatal("Demo failed")
	}

	logger.WithField("output_dir", cfg.OutputDir).Info("Demo finished")
	os.Exit(0)
}

// initLogger initializes the logger with appropriate level
func initLogger(debugMode bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if debugMode {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
		logger.Debug("Debug logging enabled")
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return logger
}
