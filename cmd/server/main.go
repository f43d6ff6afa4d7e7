package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper-agent/internal/agent"
	"github.com/vancomm/minesweeper-agent/internal/app"
	"github.com/vancomm/minesweeper-agent/internal/config"
	"github.com/vancomm/minesweeper-agent/internal/database"
	"github.com/vancomm/minesweeper-agent/internal/knowledge"
)

func main() {
	mainCtx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	log, err := config.NewLogger(os.Stderr)
	if err != nil {
		logrus.Fatal("unable to set up logging: ", err)
	}
	config.ApplyTo(log, agent.Log, knowledge.Log)

	log.WithField("development", config.Development()).Info("starting up")

	if err := app.New(log, database.Migrations).Start(mainCtx); err != nil {
		log.Fatal("exit reason: ", err)
	}
	log.Info("server stopped")
}
