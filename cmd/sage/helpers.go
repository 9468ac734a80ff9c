package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/sagebudget/sage/internal/config"
	"github.com/sagebudget/sage/internal/recur"
	"github.com/sagebudget/sage/internal/service"
	"github.com/sagebudget/sage/internal/storage"
)

// initStorage opens the database and brings the schema up to date.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := config.DatabasePath(viper.GetString("database.path"))

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initDetector builds the detection engine from the loaded configuration.
func initDetector() (*recur.Detector, error) {
	rules, err := config.Exclusions()
	if err != nil {
		return nil, err
	}
	return recur.NewDetector(config.Detection(), recur.NewExclusionMatcher(rules))
}
