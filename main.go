package main

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/serenity-app/serenity/config"
	"github.com/serenity-app/serenity/gamification"
	"github.com/serenity-app/serenity/models"
	"github.com/serenity-app/serenity/routes"
	"github.com/serenity-app/serenity/store"
	"github.com/serenity-app/serenity/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer func() { _ = utils.Logger.Sync() }()

	loc, err := cfg.Location()
	if err != nil {
		utils.Sugar.Fatalf("resolve timezone: %v", err)
	}

	db := config.InitDatabase(cfg, &models.UserGamification{})

	users := gamification.NewRegistry(store.NewRecordStore(db), gamification.Options{
		Location: loc,
		Broker:   gamification.NewBroker(cfg.EventBuffer),
		Logger:   utils.Logger.Named("gamification"),
	})

	var guests *gamification.Registry
	if !cfg.DisableGuest {
		guests = gamification.NewRegistry(store.NewLocalStore(utils.NewRedis(cfg), cfg.LocalStateKey), gamification.Options{
			Location: loc,
			Broker:   gamification.NewBroker(cfg.EventBuffer),
			Logger:   utils.Logger.Named("gamification.guest"),
		})
	}

	r := routes.SetupRouter(cfg, routes.Deps{Users: users, Guests: guests})

	flush := func(ctx context.Context) error {
		errs := []error{users.FlushAll(ctx)}
		if guests != nil {
			errs = append(errs, guests.FlushAll(ctx))
		}
		return errors.Join(errs...)
	}

	idle := time.Duration(cfg.SessionIdleMinutes) * time.Minute
	maintain := func(ctx context.Context) error {
		errs := []error{flush(ctx)}
		if idle > 0 {
			_, err := users.EvictIdle(ctx, idle)
			errs = append(errs, err)
		}
		return errors.Join(errs...)
	}
	if cfg.FlushIntervalSec > 0 {
		flushCtx, stopFlush := context.WithCancel(context.Background())
		defer stopFlush()
		utils.StartPeriodicFlush(flushCtx, time.Duration(cfg.FlushIntervalSec)*time.Second, maintain)
	}

	utils.Logger.Info("starting server (graceful)",
		zap.String("port", cfg.AppPort),
		zap.String("db_driver", cfg.DBDriver),
		zap.String("timezone", loc.String()),
		zap.Bool("guest", guests != nil))
	if err := utils.GraceServer(":"+cfg.AppPort, r, flush); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
