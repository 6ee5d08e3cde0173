package main

import (
	"context"

	"github.com/cppla/boardcore/config"
	"github.com/cppla/boardcore/models"
	"github.com/cppla/boardcore/routes"
	"github.com/cppla/boardcore/services"
	"github.com/cppla/boardcore/storage"
	"github.com/cppla/boardcore/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer func() { _ = utils.Logger.Sync() }()

	db := config.InitDatabase(cfg, models.All()...)

	blobs, err := storage.New(cfg)
	if err != nil {
		utils.Sugar.Fatalf("blob store: %v", err)
	}

	r := routes.SetupRouter(db, cfg, blobs)

	srv := utils.NewBoardServer(":"+cfg.AppPort, r)
	srv.OnShutdown("database", func(context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	sessions := services.NewSessionService(db, cfg.SessionTTL)
	utils.StartSessionSweeper(sweepCtx, cfg.SessionSweepEvery, sessions.PurgeExpired)
	srv.OnShutdown("session sweeper", func(context.Context) error {
		stopSweeper()
		return nil
	})

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := srv.ListenAndServe(); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
