package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Luismi76/fiestapp-sub003/internal/config"
	"github.com/Luismi76/fiestapp-sub003/internal/db"
	"github.com/Luismi76/fiestapp-sub003/internal/events"
	"github.com/Luismi76/fiestapp-sub003/internal/handlers"
	"github.com/Luismi76/fiestapp-sub003/internal/payments"
	"github.com/Luismi76/fiestapp-sub003/internal/services"
	"github.com/Luismi76/fiestapp-sub003/internal/store"
)

func main() {
	cfg := config.Load()
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if cfg.AppEnv == "development" {
		log.SetLevel(logrus.DebugLevel)
	}

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect database")
	}
	defer database.Close()

	users := store.NewUserStore(database)
	wallets := store.NewWalletStore(database)
	transactions := store.NewTransactionStore(database)
	matches := store.NewMatchStore(database)
	disputes := store.NewDisputeStore(database)
	intents := store.NewPaymentIntentStore(database)
	audit := store.NewAuditStore(database)
	txRunner := db.NewTxRunner(database)
	hub := events.NewHub()

	var provider payments.Provider
	switch cfg.PaymentProvider {
	case "order":
		provider = payments.NewOrderProvider(cfg.OrderAPIKey, cfg.OrderBaseURL)
	default:
		provider = payments.NewCardProvider(cfg.CardAPIKey, cfg.CardBaseURL)
	}
	gateway := payments.NewAdapter(provider, intents, log)

	walletSvc := services.NewWalletService(txRunner, wallets, transactions, audit, hub, cfg.PlatformFeeMinor, log)
	pricer := services.NewTieredPricer(cfg.BasePriceMinor)
	topups := services.NewTopUpService(txRunner, wallets, transactions, walletSvc, gateway, cfg.OrderReturnURL, cfg.OrderCancelURL, log)
	matchSvc := services.NewMatchService(txRunner, matches, wallets, walletSvc, gateway, pricer, audit, hub, services.MatchConfig{
		Currency:            cfg.Currency,
		CommissionPercent:   cfg.CommissionPercent,
		CancelRefundPercent: cfg.CancelRefundPercent,
		ReturnURL:           cfg.OrderReturnURL,
		CancelURL:           cfg.OrderCancelURL,
	}, log)
	disputeSvc := services.NewDisputeService(txRunner, disputes, matches, wallets, walletSvc, gateway, audit, hub, log)

	handler := handlers.New(txRunner, cfg, users, wallets, transactions, matches, disputes, audit, walletSvc, topups, matchSvc, disputeSvc, gateway, hub)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("addr", server.Addr).Info("fiestapp API listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("shutdown error")
	}
}
