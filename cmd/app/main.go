package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"edumaster-order-bot/internal/application"
	"edumaster-order-bot/internal/config"
	"edumaster-order-bot/internal/domain/model"
	tele "edumaster-order-bot/internal/infra/adapters/telegram"
	"edumaster-order-bot/internal/infra/api"
	"edumaster-order-bot/internal/infra/logging"
	"edumaster-order-bot/internal/infra/memstore"
	"edumaster-order-bot/internal/infra/metrics"
	red "edumaster-order-bot/internal/infra/redis"
	"edumaster-order-bot/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "developer mode (console logs, verbose)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Catalog ----
	catalog := model.DefaultCatalog()
	catalog.OverridePayment(model.BankDetails{
		IBAN:   cfg.Payment.Bank.IBAN,
		BIC:    cfg.Payment.Bank.BIC,
		Holder: cfg.Payment.Bank.Holder,
		Bank:   cfg.Payment.Bank.Bank,
	}, cfg.Payment.CryptoAddresses)

	// ---- Session store ----
	store := memstore.NewSessionStore(cfg.Session, logger)

	// ---- Redis (optional, rate limiting only) ----
	var rateLimiter *red.RateLimiter
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer redisClient.Close()
		rateLimiter = red.NewRateLimiter(redisClient)
	} else {
		logger.Warn().Msg("redis.url empty, rate limiting disabled")
	}

	// ---- Use cases ----
	pricingUC := usecase.NewPricingUseCase(catalog)
	composer := usecase.NewComposer(catalog, cfg.Bot.SupportPseudo, cfg.Session.MaxFiles)

	// ---- Telegram ----
	bot, err := tele.NewBot(&cfg.Bot, rateLimiter, logger)
	if err != nil {
		log.Fatalf("telegram: %v", err)
	}

	notifierUC := usecase.NewNotifierUseCase(bot, composer, cfg.Bot.OperatorID, logger)
	convUC := usecase.NewConversationUseCase(store, pricingUC, notifierUC, composer, catalog, cfg.Session.MaxFileBytes, logger)
	facade := application.NewBotFacade(convUC, notifierUC, composer, cfg.Bot.OperatorID)

	go func() {
		if err := bot.StartPolling(ctx, facade); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("polling stopped")
		}
	}()

	// ---- Ops server ----
	opsServer := api.NewServer(&cfg.Ops, logger)
	go func() {
		if err := opsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("ops server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()
	bot.StopPolling()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = opsServer.Shutdown(shutdownCtx)
}
