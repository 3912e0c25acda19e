package app

import (
	"database/sql"

	"github.com/fixtrack/fixtrack/internal/utils"
	"github.com/fixtrack/fixtrack/pkg/item"
	"github.com/fixtrack/fixtrack/pkg/payment"
	"github.com/fixtrack/fixtrack/pkg/preferences"
	"github.com/fixtrack/fixtrack/pkg/stats"
	"github.com/fixtrack/fixtrack/pkg/transfer"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	ItemRepo    item.Repository
	ItemService item.Service
	ItemHandler *item.Handler

	PaymentRepo    payment.Repository
	PaymentService payment.Service
	PaymentHandler *payment.Handler

	StatsService *stats.ServiceImpl
	StatsHandler *stats.Handler

	PreferencesRepo    preferences.Repository
	PreferencesService preferences.Service
	PreferencesHandler *preferences.Handler

	TransferService transfer.Service
	TransferHandler *transfer.Handler

	Clock utils.Clock
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *sql.DB) *Dependencies {
	deps := &Dependencies{}

	deps.Clock = &utils.SystemClock{}

	deps.ItemRepo = item.NewRepository(db)
	deps.ItemService = item.NewService(deps.ItemRepo, deps.Clock)
	deps.ItemHandler = item.NewHandler(deps.ItemService)

	deps.PaymentRepo = payment.NewRepository(db)
	deps.PaymentService = payment.NewService(deps.PaymentRepo)
	deps.PaymentHandler = payment.NewHandler(deps.PaymentService)

	deps.StatsService = stats.NewService(deps.ItemRepo, deps.PaymentRepo)
	deps.StatsHandler = stats.NewHandler(deps.StatsService)

	deps.PreferencesRepo = preferences.NewRepository(db)
	deps.PreferencesService = preferences.NewService(deps.PreferencesRepo, deps.Clock)
	deps.PreferencesHandler = preferences.NewHandler(deps.PreferencesService)

	deps.TransferService = transfer.NewService(deps.ItemRepo, deps.PaymentRepo, deps.PreferencesRepo, deps.Clock)
	deps.TransferHandler = transfer.NewHandler(deps.TransferService)

	return deps
}
