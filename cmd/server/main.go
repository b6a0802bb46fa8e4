package main

import (
	"time"

	"github.com/Amirjjf/Chat-application-Distributed-System/internal/config"
	"github.com/Amirjjf/Chat-application-Distributed-System/internal/db"
	"github.com/Amirjjf/Chat-application-Distributed-System/internal/identity"
	clog "github.com/Amirjjf/Chat-application-Distributed-System/internal/log"
	"github.com/Amirjjf/Chat-application-Distributed-System/internal/server"
	"github.com/Amirjjf/Chat-application-Distributed-System/internal/store"
	"github.com/Amirjjf/Chat-application-Distributed-System/internal/worker"
	"github.com/Amirjjf/Chat-application-Distributed-System/internal/ws"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	// main 函数负责加载配置、初始化日志、连接文档存储并启动 Gin 服务。
	_ = godotenv.Load()
	cfg := config.Load()
	clog.Init(cfg.Env)

	gdb, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatal().Err(err).Msg("db migrate")
	}

	st := store.NewMessages(gdb)
	pool := worker.NewPool(st, cfg.PersistWorkers)
	verifier := identity.NewClient(cfg.IdentityURL, time.Duration(cfg.IdentityTimeout)*time.Second)

	hub := ws.NewHub()
	go hub.Run()

	r := server.SetupRouter(cfg, hub, verifier, st, pool)
	log.Info().Str("port", cfg.Port).Str("identity_url", cfg.IdentityURL).Msg("chat broker listening")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server run")
	}
}
