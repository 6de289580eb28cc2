package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/eyecrackcodes/agentsummary/internal/app"
)

func main() {
	configPath := flag.String("config", "", "path to config file (YAML)")
	datasetPath := flag.String("dataset", "", "production workbook to load at startup (.csv or .xlsx)")
	flag.Parse()

	application, err := app.NewApplication(*configPath)
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if *datasetPath != "" {
		if err := application.LoadDatasetFile(context.Background(), *datasetPath); err != nil {
			slog.Error("Failed to load startup dataset",
				slog.String("path", *datasetPath),
				slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	if err := application.Run(); err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
