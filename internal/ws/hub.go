package ws

import (
	"encoding/json"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/proposal-backend/internal/logger"
)

// События статуса доставки.
const (
	EventDeliveryStarted   = "delivery.started"
	EventDeliveryCompleted = "delivery.completed"
)

// Hub раздаёт события подписчикам конкретного предложения.
type Hub struct {
	mu         sync.RWMutex
	clients    map[uuid.UUID]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan message
	done       chan struct{}
}

type message struct {
	proposalID uuid.UUID
	payload    []byte
}

// NewHub создаёт новый хаб.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, 32),
		done:       make(chan struct{}),
	}
}

// Run запускает главный цикл хаба до вызова Stop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case msg := <-h.broadcast:
			h.send(msg.proposalID, msg.payload)
		case <-h.done:
			return
		}
	}
}

// Stop завершает Run.
func (h *Hub) Stop() {
	close(h.done)
}

// Register добавляет клиента.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister удаляет клиента.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Subscribers число подключений к предложению.
func (h *Hub) Subscribers(proposalID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[proposalID])
}

// BroadcastToProposal отправляет событие всем подписчикам предложения.
// Сообщение: {"type": event, "data": data}.
func (h *Hub) BroadcastToProposal(proposalID uuid.UUID, event string, data any) error {
	raw, err := json.Marshal(map[string]any{
		"type": event,
		"data": data,
	})
	if err != nil {
		return fmt.Errorf("ws: не удалось сериализовать сообщение: %w", err)
	}

	select {
	case h.broadcast <- message{proposalID: proposalID, payload: raw}:
	case <-h.done:
	}
	return nil
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.proposalID]; !ok {
		h.clients[client.proposalID] = make(map[*Client]struct{})
	}
	h.clients[client.proposalID][client] = struct{}{}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.proposalID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.clients, client.proposalID)
		}
	}
}

func (h *Hub) send(proposalID uuid.UUID, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[proposalID] {
		select {
		case client.send <- payload:
		default:
			// Медленный клиент: закрываем асинхронно, чтобы не блокировать цикл хаба.
			go func(c *Client) {
				defer func() {
					if r := recover(); r != nil {
						logger.Entry(logrus.Fields{"panic": r, "stack": string(debug.Stack())}).
							Error("ws: паника при закрытии клиента")
					}
				}()
				c.Close()
			}(client)
		}
	}
}
