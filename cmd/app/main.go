// Video Adjustment Tool - desktop front end

package main

import (
	"fmt"
	"os"

	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/theme"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"video-adjustment-tool/internal/config"
	"video-adjustment-tool/internal/gui"
)

func main() {
	debugMode := pflag.Bool("debug", false, "Enable debug mode with verbose logging and step tracing")
	configPath := pflag.String("config", "", "YAML configuration file")
	logFile := pflag.String("log-file", "", "Also write logs to this rotating file")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *logFile != "" {
		cfg.Logging.File = *logFile
	}

	logger, closer, err := config.NewLogger(cfg.Logging, *debugMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	logger.WithFields(logrus.Fields{
		"version":    gui.AppVersion,
		"debug_mode": *debugMode,
		"config":     *configPath,
	}).Info("Starting Video Adjustment Tool")

	myApp := app.NewWithID(gui.AppID)
	myApp.SetIcon(theme.MediaVideoIcon())
	myApp.Settings().SetTheme(theme.DefaultTheme())

	mainApp := gui.NewApplication(myApp, cfg, logger, *debugMode)
	mainApp.ShowAndRun()

	logger.Info("Application shutting down gracefully")
}
