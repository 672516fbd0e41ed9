package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Luismi76/fiestapp-sub003/internal/config"
	"github.com/Luismi76/fiestapp-sub003/internal/db"
	"github.com/Luismi76/fiestapp-sub003/internal/events"
	"github.com/Luismi76/fiestapp-sub003/internal/middleware"
)

type Handler struct {
	txRunner     db.TxRunner
	cfg          config.Config
	users        UserStore
	wallets      WalletStore
	transactions TransactionStore
	matches      MatchStore
	disputes     DisputeStore
	audit        AuditStore
	walletSvc    WalletService
	topups       TopUpService
	matchSvc     MatchService
	disputeSvc   DisputeService
	gateway      PaymentGateway
	hub          *events.Hub
}

func New(txRunner db.TxRunner, cfg config.Config, users UserStore, wallets WalletStore, transactions TransactionStore, matches MatchStore, disputes DisputeStore, audit AuditStore, walletSvc WalletService, topups TopUpService, matchSvc MatchService, disputeSvc DisputeService, gateway PaymentGateway, hub *events.Hub) *Handler {
	return &Handler{
		txRunner:     txRunner,
		cfg:          cfg,
		users:        users,
		wallets:      wallets,
		transactions: transactions,
		matches:      matches,
		disputes:     disputes,
		audit:        audit,
		walletSvc:    walletSvc,
		topups:       topups,
		matchSvc:     matchSvc,
		disputeSvc:   disputeSvc,
		gateway:      gateway,
		hub:          hub,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.cfg.AllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.With(middleware.Auth(h.cfg.JWTSecret)).Get("/me", h.Me)
	})

	router.Route("/wallet", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Get("/", h.GetWallet)
		r.Get("/can-operate", h.CanOperate)
		r.Get("/transactions", h.ListWalletTransactions)
	})

	router.Route("/topups", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Post("/", h.CreateTopUp)
		r.Post("/{ref}/confirm", h.ConfirmTopUp)
	})

	router.Post("/webhooks/payments", h.PaymentWebhook)

	router.Route("/matches", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Post("/", h.CreateMatch)
		r.Get("/", h.ListMatches)
		r.Get("/{id}", h.GetMatch)
		r.Post("/{id}/accept", h.AcceptMatch)
		r.Post("/{id}/reject", h.RejectMatch)
		r.Post("/{id}/cancel", h.CancelMatch)
		r.Post("/{id}/complete", h.CompleteMatch)
	})

	router.Route("/disputes", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Post("/", h.OpenDispute)
		r.Get("/{id}", h.GetDispute)
		r.Post("/{id}/close", h.CloseDispute)
		r.With(middleware.RequireAdmin(h.users)).Post("/{id}/review", h.ReviewDispute)
		r.With(middleware.RequireAdmin(h.users)).Post("/{id}/resolve", h.ResolveDispute)
	})

	router.Route("/admin", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Use(middleware.RequireAdmin(h.users))
		r.Get("/transactions", h.AdminListTransactions)
		r.Get("/disputes", h.AdminListDisputes)
		r.Get("/audit", h.ListAuditLogs)
		r.Get("/reconcile", h.Reconcile)
		r.Post("/promote", h.PromoteAdmin)
	})

	router.Get("/ws/events", h.WSEvents)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return router
}
