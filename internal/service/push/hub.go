package push

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"storefront/internal/pkg/logger"
	"storefront/internal/pkg/session"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 简化处理，允许所有跨域
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub 维护本节点所有活跃的 WebSocket 连接
type Hub struct {
	nodeID     string
	sessionMgr *session.Manager

	clients    map[string]*Client // UserID -> 连接
	register   chan *Client
	unregister chan *Client
	lock       sync.RWMutex
}

func NewHub(nodeID string, sessionMgr *session.Manager) *Hub {
	return &Hub{
		nodeID:     nodeID,
		sessionMgr: sessionMgr,
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run 处理连接的注册与注销，随 ctx 取消退出
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case client := <-h.register:
			h.lock.Lock()
			// 同一用户重连时踢掉旧连接
			if old, ok := h.clients[client.userID]; ok {
				close(old.send)
			}
			h.clients[client.userID] = client
			h.lock.Unlock()
			logger.Ctx(ctx).Info().Str("user_id", client.userID).Str("node", h.nodeID).Msg("client registered")
		case client := <-h.unregister:
			h.lock.Lock()
			if current, ok := h.clients[client.userID]; ok && current == client {
				delete(h.clients, client.userID)
				close(client.send)
			}
			h.lock.Unlock()
			if err := h.sessionMgr.RemoveUserGateway(ctx, client.userID); err != nil {
				logger.Ctx(ctx).Error().Err(err).Str("user_id", client.userID).Msg("failed to remove session")
			}
			logger.Ctx(ctx).Info().Str("user_id", client.userID).Msg("client unregistered")
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Push 把消息投递给本节点在线的用户，返回用户是否在线
func (h *Hub) Push(userID string, payload []byte) bool {
	h.lock.RLock()
	client, ok := h.clients[userID]
	h.lock.RUnlock()
	if !ok {
		return false
	}

	select {
	case client.send <- payload:
		return true
	default:
		// 写缓冲已满，视为连接不健康。注销信号不能阻塞调用方：
		// Run 已随 ctx 退出时没有人收，直接丢弃。
		select {
		case h.unregister <- client:
		default:
		}
		return false
	}
}

// ServeWS 把 HTTP 请求升级为 WebSocket 并注册到 Hub
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{hub: h, conn: conn, send: make(chan []byte, 256), userID: userID}
	h.register <- client

	if err := h.sessionMgr.SetUserGateway(r.Context(), userID, h.nodeID); err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Str("user_id", userID).Msg("failed to set session")
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// Client 是一个 WebSocket 连接的代表
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID string
}

// writePump 把 send channel 中的消息写入连接，并维持心跳
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump 消费客户端的心跳与关闭帧
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
