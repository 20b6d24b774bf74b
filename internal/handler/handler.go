package handler

import (
	"github.com/go-telegram/bot"

	"github.com/set-night/orderboard/internal/config"
	"github.com/set-night/orderboard/internal/service"
	"github.com/set-night/orderboard/internal/telegram"
)

// Handler holds all dependencies needed by command and callback handlers.
type Handler struct {
	bot       *bot.Bot
	cfg       *config.Config
	community *service.Community
	catalog   *service.CatalogService
	ledger    *service.LedgerService
	workflow  *service.WorkflowService
	resets    *service.ResetService
	tgLogger  *telegram.TelegramLogger
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Bot       *bot.Bot
	Cfg       *config.Config
	Community *service.Community
	Catalog   *service.CatalogService
	Ledger    *service.LedgerService
	Workflow  *service.WorkflowService
	Resets    *service.ResetService
	TgLogger  *telegram.TelegramLogger
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		bot:       deps.Bot,
		cfg:       deps.Cfg,
		community: deps.Community,
		catalog:   deps.Catalog,
		ledger:    deps.Ledger,
		workflow:  deps.Workflow,
		resets:    deps.Resets,
		tgLogger:  deps.TgLogger,
	}
}
