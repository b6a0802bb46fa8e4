package ws

import (
	"sync/atomic"
	"time"

	"github.com/Amirjjf/Chat-application-Distributed-System/internal/metrics"
	"github.com/Amirjjf/Chat-application-Distributed-System/internal/store"
	"github.com/Amirjjf/Chat-application-Distributed-System/internal/worker"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// 连接状态机：Connecting → Authenticating → Active → Closing → Closed。
const (
	stateConnecting int32 = iota
	stateAuthenticating
	stateActive
	stateClosing
	stateClosed
)

type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	pool *worker.Pool

	identityID  string
	loginHandle string
	displayName string

	state int32
}

func (c *Client) setState(s int32)     { atomic.StoreInt32(&c.state, s) }
func (c *Client) inState(s int32) bool { return atomic.LoadInt32(&c.state) == s }
func (c *Client) transition(from, to int32) bool {
	return atomic.CompareAndSwapInt32(&c.state, from, to)
}

// beginClose 进入 Closing，只允许发生一次。
func (c *Client) beginClose() bool {
	return c.transition(stateActive, stateClosing) || c.transition(stateAuthenticating, stateClosing)
}

func (c *Client) readPump() {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("conn_id", c.id).Msg("connection handler panic")
			closeWith(c.conn, websocket.CloseInternalServerErr, "Internal server error")
		}
		if c.beginClose() {
			c.hub.unregister <- c
		}
		_ = c.conn.Close()
		c.setState(stateClosed)
	}()
	c.conn.SetReadLimit(1 << 20) // 1MB
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		// Closing 之后到达的帧一律忽略
		if !c.inState(stateActive) {
			continue
		}
		text, err := decodeInbound(data)
		if err != nil {
			c.hub.direct <- directFrame{to: c, data: errorFrame(err.Error())}
			continue
		}
		if text == "" {
			continue
		}
		res := c.pool.Submit(worker.Task{
			SenderID:      c.identityID,
			SenderLoginID: c.loginHandle,
			SenderName:    c.displayName,
			Text:          text,
		})
		go c.awaitResult(res)
	}
}

// awaitResult 等待持久化结果。任务不随连接关闭而取消：
// 成功仍然广播给所有存活连接，失败只通知提交方。
func (c *Client) awaitResult(res <-chan worker.Result) {
	r := <-res
	if r.Err != nil {
		metrics.PersistFailuresTotal.Inc()
		c.hub.direct <- directFrame{to: c, data: errorFrame("Failed to save message to database.")}
		return
	}
	metrics.WsMessagesTotal.Inc()
	c.hub.broadcast <- newMessageFrame(*r.Message)
}

// loadHistory 把最近的历史消息只发给本连接，失败降级为错误帧。
func (c *Client) loadHistory(st *store.Messages, limit int) {
	msgs, err := st.Recent(limit, 0)
	if err != nil {
		log.Error().Err(err).Str("conn_id", c.id).Msg("load history")
		c.hub.direct <- directFrame{to: c, data: errorFrame("Could not load message history.")}
		return
	}
	c.hub.direct <- directFrame{to: c, data: historyFrame(msgs)}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			_, _ = w.Write(message)
			_ = w.Close()
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
