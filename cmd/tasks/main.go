package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tasktracker/internal/server"
	"tasktracker/repository/db"
	"tasktracker/repository/inmemory"
)

func main() {
	cfg := server.ReadConfig()
	log := server.NewLogger("tasks")

	log.Info("task tracking service starting")

	if err := db.Migration(cfg.DBStr, cfg.MigratePath); err != nil {
		log.WithError(err).Warn("migrations not applied")
	} else {
		log.Info("migrations applied")
	}

	var users server.UserRepository
	var tasks server.TaskRepository

	storage, err := db.NewStorage(cfg.DBStr, log)
	if err != nil {
		log.WithError(err).Warn("database unavailable, falling back to in-memory storage")
		mem := inmemory.NewStorage()
		users, tasks = mem, mem
	} else {
		users, tasks = storage, storage
		defer func() {
			if err := storage.Close(context.Background()); err != nil {
				log.WithError(err).Error("failed to close database connection")
			}
		}()
	}

	api := server.NewTaskAPI(users, tasks, cfg, log)
	if api == nil {
		log.Fatal("failed to initialize API")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Addr).WithField("port", cfg.Port).Info("service listening")
		if err := api.Start(); err != nil {
			serverErr <- err
		}
	}()

	select {
	case sig := <-sigChan:
		log.WithField("signal", sig.String()).Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := api.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("graceful shutdown failed")
		} else {
			log.Info("graceful shutdown complete")
		}

	case err := <-serverErr:
		log.WithError(err).Error("server error")
	}

	log.Info("service stopped")
}
