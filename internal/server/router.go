package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Amirjjf/Chat-application-Distributed-System/internal/config"
	"github.com/Amirjjf/Chat-application-Distributed-System/internal/metrics"
	"github.com/Amirjjf/Chat-application-Distributed-System/internal/mw"
	"github.com/Amirjjf/Chat-application-Distributed-System/internal/store"
	"github.com/Amirjjf/Chat-application-Distributed-System/internal/worker"
	"github.com/Amirjjf/Chat-application-Distributed-System/internal/ws"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// SetupRouter 统一初始化 Gin 中间件、REST API 以及 WebSocket 端点。
func SetupRouter(cfg config.Config, hub *ws.Hub, verifier ws.Verifier, st *store.Messages, pool *worker.Pool) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(metrics.GinMiddleware())
	r.Use(mw.CORS(cfg.Env))
	r.Use(mw.RateLimit(rate.Every(time.Second/20), 40))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 状态页：报告当前在线身份。
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "ChatApp Backend Running",
			"connections": hub.Online(),
			"identities":  hub.Identities(),
		})
	})

	api := r.Group("/api/v1")

	api.GET("/messages", func(c *gin.Context) {
		limitStr := c.Query("limit")
		if limitStr == "" {
			limitStr = strconv.Itoa(cfg.HistoryLimit)
		}
		limit, _ := strconv.Atoi(limitStr)
		var beforeID uint
		if bid := c.Query("before_id"); bid != "" {
			if v, err := strconv.Atoi(bid); err == nil && v > 0 {
				beforeID = uint(v)
			}
		}
		msgs, err := st.Recent(limit, beforeID)
		if err != nil {
			log.Error().Err(err).Msg("list messages")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list messages"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"messages": msgs})
	})

	r.GET("/ws", ws.Serve(hub, verifier, st, pool, cfg))

	return r
}
