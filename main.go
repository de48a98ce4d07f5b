package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/ruanvs/investec-agent/pkg/ai"
	"github.com/ruanvs/investec-agent/pkg/config"
	"github.com/ruanvs/investec-agent/pkg/investec"
	"github.com/ruanvs/investec-agent/pkg/prometheus"
	"github.com/ruanvs/investec-agent/pkg/store"
)

func main() {
	// for development purposes
	// we don't care about errors here
	_ = godotenv.Load(".env")
	conf := config.NewConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := createLogger(conf)
	mon := prometheus.New()

	logger.Infof("starting with client ID %s (sandbox: %t)", conf.MaskedClientID(), conf.UseSandbox)

	storage := createStorage(ctx, conf, logger)
	client := investec.NewClient(conf, mon, logger)
	agent := ai.NewAi(ctx, conf, client, mon, logger)

	StartServer(NewRouter(&HandlerRepository{
		ai:        agent,
		storage:   storage,
		config:    conf,
		monitor:   mon,
		logger:    logger,
		startedAt: time.Now(),
	}), conf.Port)
}

func createLogger(conf *config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)
	if conf.Debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	return logger
}

// createStorage picks Postgres when a connection string is configured,
// Redis otherwise.
func createStorage(ctx context.Context, conf *config.Config, logger *logrus.Logger) store.Storage {
	if conf.DBString != "" {
		storage, err := store.NewPostgresStore(ctx, conf.DBString)
		if err != nil {
			logger.Fatalf("could not connect to Postgres: %v", err)
		}
		return storage
	}

	return store.NewRedisStore(conf)
}
