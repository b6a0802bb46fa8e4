package ws

import (
	"context"
	"errors"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/Amirjjf/Chat-application-Distributed-System/internal/config"
	"github.com/Amirjjf/Chat-application-Distributed-System/internal/identity"
	"github.com/Amirjjf/Chat-application-Distributed-System/internal/store"
	"github.com/Amirjjf/Chat-application-Distributed-System/internal/worker"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// 应用级认证失败关闭码，区别于 1008（未携带凭证）。
const CloseAuthFailure = 4001

// Verifier 是连接建立时换取身份记录的唯一入口。
type Verifier interface {
	Verify(ctx context.Context, credential string) (*identity.Record, error)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Serve 处理 /ws 端点：验证凭证、注册连接并异步加载历史。
func Serve(h *Hub, verifier Verifier, st *store.Messages, pool *worker.Pool, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		cl := &Client{
			id:    uuid.NewString(),
			hub:   h,
			conn:  conn,
			send:  make(chan []byte, 256),
			pool:  pool,
			state: stateConnecting,
		}

		if token == "" {
			log.Warn().Str("conn_id", cl.id).Msg("connection rejected: no token")
			closeWith(conn, websocket.ClosePolicyViolation, "Token required")
			cl.setState(stateClosed)
			return
		}

		cl.setState(stateAuthenticating)
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Duration(cfg.IdentityTimeout)*time.Second)
		rec, err := verifier.Verify(ctx, token)
		cancel()
		if err != nil {
			reason := "Authentication failed: " + authReason(err)
			log.Warn().Err(err).Str("conn_id", cl.id).Msg("connection rejected: auth failed")
			closeWith(conn, CloseAuthFailure, reason)
			cl.setState(stateClosed)
			return
		}

		cl.identityID = rec.ID
		cl.loginHandle = rec.LoginHandle
		cl.displayName = rec.DisplayName
		cl.setState(stateActive)
		h.register <- cl
		log.Info().Str("conn_id", cl.id).Str("identity_id", rec.ID).Str("display_name", rec.DisplayName).Msg("client connected")

		go cl.writePump()
		go cl.loadHistory(st, cfg.HistoryLimit)
		cl.readPump()
	}
}

func authReason(err error) string {
	if errors.Is(err, identity.ErrUnavailable) {
		return "authentication service unavailable"
	}
	return err.Error()
}

// truncateCloseReason 把关闭原因裁剪到控制帧载荷允许的长度，
// 只在 rune 边界截断，避免产生非法 UTF-8。
func truncateCloseReason(reason string) string {
	// 控制帧载荷上限 125 字节
	if len(reason) <= 120 {
		return reason
	}
	cut := 120
	for cut > 0 && !utf8.RuneStart(reason[cut]) {
		cut--
	}
	return reason[:cut]
}

func closeWith(conn *websocket.Conn, code int, reason string) {
	msg := websocket.FormatCloseMessage(code, truncateCloseReason(reason))
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(5*time.Second))
	_ = conn.Close()
}
