package handler

import "github.com/ugaemi/roomrelay/internal/ws"

// Binding is the identity a connection currently speaks for.
type Binding struct {
	PlayerID string
	RoomCode string
}

// Registry maps each connection to at most one Binding. It is only touched
// from the hub loop and needs no lock.
type Registry struct {
	bindings map[*ws.Client]Binding
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{bindings: make(map[*ws.Client]Binding)}
}

// Bind associates client with b, replacing any previous binding.
func (r *Registry) Bind(client *ws.Client, b Binding) {
	r.bindings[client] = b
}

// Lookup returns the binding for client.
func (r *Registry) Lookup(client *ws.Client) (Binding, bool) {
	b, ok := r.bindings[client]
	return b, ok
}

// Unbind removes and returns the binding for client.
func (r *Registry) Unbind(client *ws.Client) (Binding, bool) {
	b, ok := r.bindings[client]
	if ok {
		delete(r.bindings, client)
	}
	return b, ok
}

// Len returns the number of bound connections.
func (r *Registry) Len() int {
	return len(r.bindings)
}
