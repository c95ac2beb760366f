// Owner: tom@tradecrew.au
package main

import (
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/pkg/errors"

	"github.com/TradecrewAI/tradecrew/pkg/ai"
	"github.com/TradecrewAI/tradecrew/pkg/api"
	"github.com/TradecrewAI/tradecrew/pkg/assistant"
	"github.com/TradecrewAI/tradecrew/pkg/assistant/repository"
	"github.com/TradecrewAI/tradecrew/pkg/bootstrap"
	"github.com/TradecrewAI/tradecrew/pkg/config"
	"github.com/TradecrewAI/tradecrew/pkg/db"
	"github.com/TradecrewAI/tradecrew/pkg/knowledge"
	"github.com/TradecrewAI/tradecrew/pkg/logging"
	"github.com/TradecrewAI/tradecrew/pkg/mailroom"
	"github.com/TradecrewAI/tradecrew/pkg/notify"
	"github.com/TradecrewAI/tradecrew/pkg/scheduler"
	"github.com/TradecrewAI/tradecrew/pkg/triage"
)

func main() {
	envs, err := config.LoadConfig(false)
	if err != nil {
		panic(errors.Wrap(err, "Unable to load config"))
	}

	logger := logging.New(envs.LogLevel)
	logger.Info("Using database path", "path", envs.DBPath)

	if err := os.MkdirAll(filepath.Dir(envs.DBPath), 0o755); err != nil {
		panic(errors.Wrap(err, "Unable to create data directory"))
	}

	natsPort, err := strconv.Atoi(envs.NatsPort)
	if err != nil {
		panic(errors.Wrap(err, "Invalid NATS port"))
	}

	natsServer, err := bootstrap.StartEmbeddedNATSServer(logging.ForComponent(logger, "nats"), natsPort)
	if err != nil {
		panic(errors.Wrap(err, "Unable to start NATS server"))
	}
	defer natsServer.Shutdown()

	nc, err := bootstrap.NewNatsClient(bootstrap.NatsURL(natsPort))
	if err != nil {
		panic(errors.Wrap(err, "Unable to create NATS client"))
	}
	defer nc.Close()
	logger.Info("NATS client connected")

	store, err := db.NewStore(envs.DBPath)
	if err != nil {
		panic(errors.Wrap(err, "Unable to create or initialize database"))
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Error closing store", "error", err)
		}
	}()
	logger.Info("SQLite database initialized")

	aiService := ai.NewOpenAIService(
		logging.ForComponent(logger, "ai"),
		envs.CompletionsAPIKey,
		envs.CompletionsAPIURL,
	)

	knowledgeService := knowledge.NewService(logging.ForComponent(logger, "knowledge"), store)
	triageService := triage.NewService(logging.ForComponent(logger, "triage"), store, store, knowledgeService)
	assistantService := assistant.NewService(
		logging.ForComponent(logger, "assistant"),
		aiService,
		repository.NewRepository(logging.ForComponent(logger, "assistant"), store.DB()),
		nc,
		envs.CompletionsModel,
	)
	notifyService := notify.NewService(logging.ForComponent(logger, "notify"), nc, store)

	briefScheduler := scheduler.NewService(
		logging.ForComponent(logger, "scheduler"),
		triageService,
		notifyService,
		store,
	)
	if err := briefScheduler.Start(envs.BriefCronSpec); err != nil {
		panic(errors.Wrap(err, "Unable to start brief scheduler"))
	}
	defer briefScheduler.Stop()

	processor, err := mailroom.NewProcessor(logging.ForComponent(logger, "mailroom"))
	if err != nil {
		panic(errors.Wrap(err, "Unable to create mail processor"))
	}

	server := api.NewServer(logger, triageService, assistantService, knowledgeService, processor, store)
	router := server.Router()

	// Start HTTP server in a goroutine so it doesn't block signal handling
	go func() {
		logger.Info("Starting HTTP server", "address", "http://localhost:"+envs.HTTPPort)
		err := http.ListenAndServe(":"+envs.HTTPPort, router)
		if err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			panic(errors.Wrap(err, "Unable to start server"))
		}
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)

	<-signalChan
	logger.Info("Server shutting down...")
}
