package search

import "sync"

// Registry maps index names to search clients. It is an explicitly
// constructed dependency, not process-global state: construct one per
// configuration and hand it to whatever needs it. Registration should finish
// before serving traffic.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]Client
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]Client)}
}

func (r *Registry) Register(index string, client Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.clients[index] = client
}

func (r *Registry) Get(index string) (Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	client, ok := r.clients[index]
	return client, ok
}

func (r *Registry) Indexes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	indexes := make([]string, 0, len(r.clients))
	for index := range r.clients {
		indexes = append(indexes, index)
	}
	return indexes
}
