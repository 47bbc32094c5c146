// Package ws: хаб WebSocket-соединений live-ленты.
//
// Клиент подключается к /ws и первым сообщением присылает {"token": "<jwt>"}.
// Без валидного токена за authTimeout соединение закрывается.
// Хаб принимает только роли из Options.AllowedRoles и рассылает сообщения по ролям.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"sync"
	"time"

	"shifttrack/internal/shared/logger"
	"shifttrack/internal/shared/metrics"
	"shifttrack/internal/shared/utils"

	"github.com/gorilla/websocket"
)

const (
	authTimeout    = 5 * time.Second
	pingInterval   = 30 * time.Second
	pongWait       = 60 * time.Second
	maxMessageSize = 8192
	writeWait      = 10 * time.Second
)

// ErrRoleNotAllowed: роль из токена не может подписаться на ленту
var ErrRoleNotAllowed = errors.New("role not allowed on live feed")

// AuthFunc проверяет токен и возвращает userID и роль
type AuthFunc func(token string) (userID, role string, err error)

// Options: ограничения хаба; пустые списки ничего не ограничивают
type Options struct {
	AllowedRoles   []string
	AllowedOrigins []string
}

// Client: одно WebSocket-соединение
type Client struct {
	ID     string
	UserID string
	Role   string
	conn   *websocket.Conn
	send   chan []byte
	hub    *Hub
}

// Hub хранит активные соединения
type Hub struct {
	clients    map[string]*Client
	mu         sync.RWMutex
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once
	authFunc   AuthFunc
	opts       Options
	upgrader   websocket.Upgrader
	log        *logger.Logger
}

func NewHub(authFunc AuthFunc, opts Options, log *logger.Logger) *Hub {
	h := &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		authFunc:   authFunc,
		opts:       opts,
		log:        log,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.opts.AllowedOrigins) == 0 {
		return true
	}
	return slices.Contains(h.opts.AllowedOrigins, origin)
}

// Run: главный цикл хаба; при отмене ctx закрывает все соединения
func (h *Hub) Run(ctx context.Context) {
	defer h.stopOnce.Do(func() { close(h.done) })
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, client := range h.clients {
				close(client.send)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			metrics.WebSocketClients.Set(0)
			h.log.Info(logger.Entry{Action: "hub_stopped", Message: "websocket hub stopped"})
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			n := len(h.clients)
			h.mu.Unlock()
			metrics.WebSocketClients.Set(float64(n))
			h.log.Info(logger.Entry{
				Action:  "client_registered",
				Message: client.ID,
				Additional: map[string]any{
					"user_id": client.UserID,
					"role":    client.Role,
				},
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			metrics.WebSocketClients.Set(float64(n))
			h.log.Info(logger.Entry{
				Action:  "client_unregistered",
				Message: client.ID,
			})
		}
	}
}

// Done закрывается, когда Run завершился
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// join передает клиента в Run; false, если хаб уже остановлен
func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// ClientCount: число зарегистрированных соединений
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// SendToRole отправляет сообщение всем клиентам роли; медленный клиент пропускает сообщение
func (h *Hub) SendToRole(role string, message []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, client := range h.clients {
		if client.Role != role {
			continue
		}
		select {
		case client.send <- message:
			delivered++
		default:
			h.log.Warn(logger.Entry{
				Action:  "send_to_role_dropped",
				Message: role,
				Additional: map[string]any{
					"client_id": client.ID,
				},
			})
		}
	}
	return delivered
}

// sendToClient пишет только в зарегистрированного клиента, закрытый канал не трогается
func (h *Hub) sendToClient(clientID string, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if client, ok := h.clients[clientID]; ok {
		select {
		case client.send <- message:
		default:
		}
	}
}

// SendToRoleJSON сериализует data и отправляет всем клиентам роли
func (h *Hub) SendToRoleJSON(role string, data any) error {
	msg, err := json.Marshal(data)
	if err != nil {
		return err
	}
	h.SendToRole(role, msg)
	return nil
}

// ServeWS поднимает соединение и ждет первое сообщение с токеном
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn(logger.Entry{
			Action:  "ws_upgrade_failed",
			Message: err.Error(),
		})
		return
	}

	_ = conn.SetReadDeadline(time.Now().Add(authTimeout))

	var authMsg struct {
		Token string `json:"token"`
	}
	if err := conn.ReadJSON(&authMsg); err != nil {
		h.reject(conn, websocket.CloseProtocolError, "auth timeout")
		h.log.Warn(logger.Entry{Action: "ws_auth_failed", Message: "no auth message received"})
		return
	}

	userID, role, err := h.authFunc(authMsg.Token)
	if err == nil && len(h.opts.AllowedRoles) > 0 && !slices.Contains(h.opts.AllowedRoles, role) {
		err = ErrRoleNotAllowed
	}
	if err != nil {
		_ = conn.WriteJSON(map[string]string{"error": err.Error()})
		h.reject(conn, websocket.ClosePolicyViolation, "unauthorized")
		h.log.Warn(logger.Entry{
			Action:  "ws_auth_rejected",
			Message: err.Error(),
			Additional: map[string]any{
				"role": role,
			},
		})
		return
	}

	client := &Client{
		ID:     utils.NewUUID(),
		UserID: userID,
		Role:   role,
		conn:   conn,
		send:   make(chan []byte, 256),
		hub:    h,
	}

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	if !h.join(client) {
		h.reject(conn, websocket.CloseGoingAway, "server shutting down")
		return
	}
	_ = conn.WriteJSON(map[string]string{"status": "authenticated", "user_id": userID})

	go client.writePump()
	go client.readPump()
}

func (h *Hub) reject(conn *websocket.Conn, code int, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
	_ = conn.Close()
}

// readPump читает сообщения клиента; поддерживается только {"type":"ping"}
func (c *Client) readPump() {
	defer func() {
		c.hub.leave(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.hub.log.WithFields(map[string]any{
					"client_id": c.ID,
					"user_id":   c.UserID,
				}).Warn(logger.Entry{
					Action:  "ws_read_error",
					Message: err.Error(),
					Error:   &logger.ErrObj{Msg: err.Error()},
				})
			}
			return
		}

		var msg struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		if msg.Type == "ping" {
			c.hub.sendToClient(c.ID, []byte(`{"type":"pong"}`))
		}
	}
}

// writePump: единственный писатель в соединение после аутентификации
func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
