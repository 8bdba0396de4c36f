package runtime

import (
	"chat-client/contract"
	"sync"

	"github.com/samber/lo"
)

// Registry remembers the live subscriptions so they survive a reconnect.
// Insertion order is kept: subscriptions are re-sent in the order they were made.
type Registry struct {
	mu            sync.RWMutex
	Subscriptions map[string]contract.Subscription
	order         []string
}

func NewRegistry() *Registry {
	return &Registry{
		Subscriptions: make(map[string]contract.Subscription),
	}
}

// Add registers a subscription, replacing any previous one with the same id.
func (r *Registry) Add(sub contract.Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.Subscriptions[sub.ID]; !ok {
		r.order = append(r.order, sub.ID)
	}
	r.Subscriptions[sub.ID] = sub
}

// Remove forgets a subscription. Removing an unknown id is a no-op.
func (r *Registry) Remove(id string) (contract.Subscription, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.Subscriptions[id]
	if !ok {
		return contract.Subscription{}, false
	}
	delete(r.Subscriptions, id)
	r.order = lo.Without(r.order, id)
	return sub, true
}

func (r *Registry) Get(id string) (contract.Subscription, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sub, ok := r.Subscriptions[id]
	return sub, ok
}

// All returns the active subscriptions in registration order.
func (r *Registry) All() []contract.Subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.Map(r.order, func(id string, _ int) contract.Subscription {
		return r.Subscriptions[id]
	})
}
