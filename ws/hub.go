package ws

import (
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"
)

// EventPublisher is what services use to broadcast. Tests substitute a
// recorder.
type EventPublisher interface {
	BroadcastToAll(event Event)
	BroadcastToUser(userID int64, event Event)
	GetOnlineUserIDs() []int64
}

// Hub tracks live connections, keyed by member id; a member may have
// several tabs open. Register and unregister go through Run's channels,
// broadcasts read the map under RLock.
type Hub struct {
	clients map[int64]map[*Client]bool
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	closeOnce  sync.Once

	seq atomic.Int64

	// called when a member's first connection opens / last one closes
	onUserConnect    func(userID int64)
	onUserDisconnect func(userID int64)
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// OnUserConnect and OnUserDisconnect must be set before Run starts.
func (h *Hub) OnUserConnect(fn func(userID int64)) { h.onUserConnect = fn }

func (h *Hub) OnUserDisconnect(fn func(userID int64)) { h.onUserDisconnect = fn }

// Run is the hub's event loop; start it with `go hub.Run()`. It returns
// after Shutdown.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.done:
			return
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	first := false
	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]bool)
		first = true
	}
	h.clients[client.userID][client] = true
	n := len(h.clients[client.userID])
	h.mu.Unlock()

	log.Printf("[ws] client connected: user=%d (connections: %d)", client.userID, n)

	if first && h.onUserConnect != nil {
		go h.onUserConnect(client.userID)
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	last := false
	if clients, ok := h.clients[client.userID]; ok {
		if _, exists := clients[client]; exists {
			delete(clients, client)
			close(client.send)

			if len(clients) == 0 {
				delete(h.clients, client.userID)
				last = true
			}
		}
	}
	h.mu.Unlock()

	if last {
		log.Printf("[ws] user fully disconnected: %d", client.userID)
		if h.onUserDisconnect != nil {
			go h.onUserDisconnect(client.userID)
		}
	}
}

// requestUnregister queues a slow or broken client for removal without
// blocking the caller.
func (h *Hub) requestUnregister(c *Client) {
	go func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
	}()
}

func (h *Hub) marshal(event Event) ([]byte, bool) {
	event.Seq = h.seq.Add(1)
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[ws] failed to marshal %s event: %v", event.Op, err)
		return nil, false
	}
	return data, true
}

// BroadcastToAll sends event to every connection. A connection whose send
// buffer is full is dropped.
func (h *Hub) BroadcastToAll(event Event) {
	data, ok := h.marshal(event)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, clients := range h.clients {
		for client := range clients {
			select {
			case client.send <- data:
			default:
				h.requestUnregister(client)
			}
		}
	}
}

// BroadcastToUser sends event to every connection of one member.
func (h *Hub) BroadcastToUser(userID int64, event Event) {
	data, ok := h.marshal(event)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[userID] {
		select {
		case client.send <- data:
		default:
			h.requestUnregister(client)
		}
	}
}

func (h *Hub) GetOnlineUserIDs() []int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]int64, 0, len(h.clients))
	for userID := range h.clients {
		ids = append(ids, userID)
	}
	return ids
}

// Shutdown closes every connection and stops Run.
func (h *Hub) Shutdown() {
	h.closeOnce.Do(func() {
		close(h.done)

		h.mu.Lock()
		defer h.mu.Unlock()

		for _, clients := range h.clients {
			for client := range clients {
				close(client.send)
			}
		}
		h.clients = make(map[int64]map[*Client]bool)
		log.Println("[ws] hub shut down, all connections closed")
	})
}
