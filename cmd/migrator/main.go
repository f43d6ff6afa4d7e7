package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper-agent/internal/config"
	"github.com/vancomm/minesweeper-agent/internal/database"
)

func main() {
	log, err := config.NewLogger(os.Stderr)
	if err != nil {
		logrus.Fatal("unable to set up logging: ", err)
	}

	url, err := config.DbURL()
	if err != nil {
		log.Fatal("no database configured: ", err)
	}

	migrator, err := database.Migrate(url, database.Migrations)
	if err != nil {
		log.Fatal(err)
	}

	version, dirty, err := migrator.Version()
	if closeErr := database.CloseMigrator(migrator); closeErr != nil {
		log.WithError(closeErr).Warn("failed to release migrator")
	}
	if err != nil {
		log.WithError(err).Error("failed to check migration version")
		os.Exit(1)
	}
	log.WithFields(logrus.Fields{
		"version": version,
		"dirty":   dirty,
	}).Info("migration successful")
}
