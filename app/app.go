// Package app assembles the QA toolbox bot: configuration, optional
// Postgres-backed usage statistics, the conversation engine and the
// Telegram runtime.
package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	corebootstrap "qabot/core/bootstrap"
	"qabot/core/cmd"
	"qabot/core/logger"
	coretelegram "qabot/core/telegram"
	tghelpers "qabot/core/telegram/helpers"
	"qabot/core/telegram/router"
	"qabot/core/telegram/state"
	"qabot/features"
	"qabot/flow"
	"qabot/stats"

	tele "gopkg.in/telebot.v4"
)

// App holds the wired application.
type App struct {
	cfg *Config
	db  *sqlx.DB
}

// Bootstrap initializes logging and, when configured, the database.
func Bootstrap(carrier cmd.ConfigCarrier) (cmd.TelegramApp, error) {
	cfg, ok := carrier.(*Config)
	if !ok {
		return nil, fmt.Errorf("app: unexpected config type %T", carrier)
	}

	if !cfg.DatabaseEnabled() {
		if err := logger.InitLogger(&cfg.Core); err != nil {
			return nil, fmt.Errorf("app: logger init failed: %w", err)
		}
		logger.L.With("component", "app").Info("running without a database")
		return &App{cfg: cfg}, nil
	}

	res, err := corebootstrap.Run(corebootstrap.Options{
		Config:   &cfg.Core,
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}
	return &App{cfg: cfg, db: res.DB}, nil
}

// TelegramRunOptions wires the registry, flow engine and routes.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	mgr := state.NewMemoryManager()
	store := stats.New(a.db)
	engine := flow.New(mgr, features.MenuHandler(), store)

	if err := features.Register(features.Options{
		Engine:   engine,
		Registry: reg,
		Stats:    store,
		AdminID:  a.cfg.Core.Telegram.AdminID,
		Config:   a.cfg.Features,
	}); err != nil {
		return coretelegram.RunOptions{}, err
	}

	rateLimited := func(c tele.Context) error {
		return tghelpers.SendText(c, "Too many requests, give it a second.")
	}

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: a.cfg.Core.Telegram.AdminID,
	})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	routes = append(routes, router.TextRoutes(mgr, reg, router.TextOptions{})...)

	opts := coretelegram.RunOptions{
		Config:      &a.cfg.Core,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(&a.cfg.Core, rateLimited),
		Routes:      routes,
		OnStop: func(ctx context.Context, rt coretelegram.Runtime) error {
			if a.db != nil {
				return a.db.Close()
			}
			return nil
		},
	}
	return opts, nil
}
