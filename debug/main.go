package main

import (
	"os"

	"github.com/emrgen/sweater/internal/config"
	"github.com/emrgen/sweater/internal/server"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	options := server.Options{
		ExportCron: os.Getenv("EXPORT_CRON"),
		ExportFile: os.Getenv("EXPORT_FILE"),
	}
	if options.ExportCron != "" && options.ExportFile == "" {
		options.ExportFile = "sweater.dot"
	}

	err = server.NewServer(cfg, options).Start()
	if err != nil {
		logrus.Fatal(err)
	}
}
