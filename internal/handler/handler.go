package handler

import (
	"github.com/go-telegram/bot"
	"github.com/kvant-lab/vpnbot/internal/config"
	"github.com/kvant-lab/vpnbot/internal/service"
	"github.com/kvant-lab/vpnbot/internal/telegram"
	"github.com/kvant-lab/vpnbot/internal/worker"
)

// Handler holds all dependencies needed by command and callback handlers.
type Handler struct {
	bot                 *bot.Bot
	cfg                 *config.Config
	userService         *service.UserService
	invoiceService      *service.InvoiceService
	paymentService      *service.PaymentService
	subscriptionService *service.SubscriptionService
	store               service.Store
	pool                *worker.Pool
	audit               *telegram.AuditLogger
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Bot                 *bot.Bot
	Cfg                 *config.Config
	UserService         *service.UserService
	InvoiceService      *service.InvoiceService
	PaymentService      *service.PaymentService
	SubscriptionService *service.SubscriptionService
	Store               service.Store
	Pool                *worker.Pool
	Audit               *telegram.AuditLogger
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		bot:                 deps.Bot,
		cfg:                 deps.Cfg,
		userService:         deps.UserService,
		invoiceService:      deps.InvoiceService,
		paymentService:      deps.PaymentService,
		subscriptionService: deps.SubscriptionService,
		store:               deps.Store,
		pool:                deps.Pool,
		audit:               deps.Audit,
	}
}
