package main

import (
	"context"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/carebridge/hms-backend/config"
	billingServices "github.com/carebridge/hms-backend/internal/billing/services"
	"github.com/carebridge/hms-backend/internal/routes"
	"github.com/carebridge/hms-backend/pkg/storage/mariadb"
	"github.com/carebridge/hms-backend/ws"
)

func main() {
	cfg := config.LoadConfig()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	db := mariadb.Connect()
	defer db.Close()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	routes.Init(e, db, ws.HubInstance)

	// Daily bed charges run in the background for as long as the server is up.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	job := billingServices.NewBedChargeJob(db, billingServices.NewChargeService(db))
	job.Start(ctx, 24*time.Hour)

	log.Info().Str("port", cfg.Port).Msg("server listening")
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
