package ws

import "log/slog"

// probe runs one liveness cycle. A client that has not answered since the
// previous cycle is removed, reported through OnDisconnect and has its
// transport closed. Every other client is sent a ping and marked unconfirmed
// until a pong or frame arrives.
func (h *Hub) probe() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.Clients))
	for client := range h.Clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		if client.alive.Swap(false) {
			client.probe()
			continue
		}

		slog.Info("client failed liveness probe", "client", client.ID)
		if h.remove(client) {
			h.disconnected(client)
		}
		client.closeTransport()
	}
}
