package main

import (
	"github.com/bdlm/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"wellboard/internal/api"
	"wellboard/internal/config"
	"wellboard/internal/dataset"
	"wellboard/internal/engine"
)

func main() {
	cfg := config.Load()

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("err", err).Warn("bad log level, using info")
		level, _ = log.ParseLevel("info")
	}
	log.SetLevel(level)

	// Load the dataset before serving anything. A missing or malformed
	// file stops the process; there is never a partially loaded dataset.
	ds, err := dataset.Load(cfg.DataPath)
	if err != nil {
		log.Fatalf("%v", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.CORS())
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())

	h := api.NewHandler(engine.New(ds))
	h.RegisterRoutes(e)

	log.WithFields(log.Fields{
		"addr": cfg.Addr,
		"rows": ds.Len(),
	}).Info("server ready")
	e.Logger.Fatal(e.Start(cfg.Addr))
}
