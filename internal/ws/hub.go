package ws

import (
	"sync/atomic"

	"github.com/Amirjjf/Chat-application-Distributed-System/internal/metrics"
)

// directFrame 是只投递给单个连接的出站帧。
type directFrame struct {
	to   *Client
	data []byte
}

// Hub 是唯一的连接注册表：按身份 id 维护活跃连接集合，
// 所有成员变更与投递都在 Run 循环内串行完成。
type Hub struct {
	clients    map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	direct     chan directFrame
	snapshot   chan chan []string
	online     int32
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		direct:     make(chan directFrame, 256),
		snapshot:   make(chan chan []string),
	}
}

// Run 驱动注册表事件循环，必须在独立 goroutine 中启动。
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			set := h.clients[c.identityID]
			if set == nil {
				set = make(map[*Client]bool)
				h.clients[c.identityID] = set
			}
			set[c] = true
			atomic.AddInt32(&h.online, 1)
			metrics.WsConnections.Inc()
		case c := <-h.unregister:
			if h.clients[c.identityID][c] {
				h.drop(c)
			}
		case msg := <-h.broadcast:
			for _, set := range h.clients {
				for c := range set {
					select {
					case c.send <- msg:
					default:
						// 投递不进去的连接视为已死，顺手清理。
						h.drop(c)
						metrics.BroadcastDropsTotal.Inc()
					}
				}
			}
		case d := <-h.direct:
			if !h.clients[d.to.identityID][d.to] {
				continue
			}
			select {
			case d.to.send <- d.data:
			default:
				h.drop(d.to)
				metrics.BroadcastDropsTotal.Inc()
			}
		case reply := <-h.snapshot:
			ids := make([]string, 0, len(h.clients))
			for id := range h.clients {
				ids = append(ids, id)
			}
			reply <- ids
		}
	}
}

// drop 只能在 Run 循环内调用。移除连接并保证空的身份键被立刻删除。
func (h *Hub) drop(c *Client) {
	set := h.clients[c.identityID]
	if set == nil || !set[c] {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.identityID)
	}
	atomic.AddInt32(&h.online, -1)
	metrics.WsConnections.Dec()
}

// Online 返回当前活跃连接数，供状态接口复用。
func (h *Hub) Online() int { return int(atomic.LoadInt32(&h.online)) }

// Identities 返回当前在线身份 id 快照。
func (h *Hub) Identities() []string {
	reply := make(chan []string, 1)
	h.snapshot <- reply
	return <-reply
}
