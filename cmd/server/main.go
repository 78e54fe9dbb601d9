package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/Faisd405/ayomabar-be/internal/config"
)

func main() {
	cfg := config.Load()
	log := newLogger(cfg)

	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	srv, err := NewServer(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("server setup failed")
	}
	if err := srv.Run(); err != nil {
		log.WithError(err).Error("server stopped with error")
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	if cfg.IsProduction() {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}
