package main

import (
	"time"

	"github.com/Amirjjf/Chat-application-Distributed-System/internal/config"
	"github.com/Amirjjf/Chat-application-Distributed-System/internal/identity"
	clog "github.com/Amirjjf/Chat-application-Distributed-System/internal/log"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// identityd 是开发用身份验证服务，实现与外部认证应用相同的
// verify 契约，让 broker 可以脱离完整认证系统单独运行。
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	clog.Init(cfg.Env)

	r := identity.DevRouter(cfg.JWTSecret, time.Duration(cfg.TokenTTLMinutes)*time.Minute)
	log.Info().Str("port", cfg.IdentityPort).Msg("identityd listening")
	if err := r.Run(":" + cfg.IdentityPort); err != nil {
		log.Fatal().Err(err).Msg("identityd run")
	}
}
