package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterDeps struct {
	Approval       *ApprovalHandler
	Webhook        *WebhookHandler
	PaymentIntents *PaymentIntentHandler
	Admin          *AdminHandler
	Gatherer       prometheus.Gatherer
	RequestTimeout time.Duration
}

func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if deps.RequestTimeout > 0 {
		r.Use(middleware.Timeout(deps.RequestTimeout))
	}

	r.Get("/", deps.Approval.Approve)
	r.Post("/webhook", deps.Webhook.Receive)

	r.Route("/payment-intents", func(r chi.Router) {
		r.Get("/nonce", deps.PaymentIntents.Nonce)
		r.Post("/", deps.PaymentIntents.Create)
	})

	r.Route("/admin/orders/{id}", func(r chi.Router) {
		r.Use(deps.Admin.RequireToken)
		r.Post("/request-approval", deps.Admin.RequestApproval)
		r.Get("/notes", deps.Admin.Notes)
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
