package runtime

import (
	"chat-client/contract"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Add_And_Remove(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	first := contract.Subscription{ID: uuid.NewString(), OperationName: "OnMessageReceived"}
	second := contract.Subscription{ID: uuid.NewString(), OperationName: "OnUserTyping"}

	// Given no subscription
	req.Empty(registry.All())

	// When two subscriptions are added
	registry.Add(first)
	registry.Add(second)

	// Then they come back in order
	req.Equal([]contract.Subscription{first, second}, registry.All())
	got, ok := registry.Get(second.ID)
	req.True(ok)
	req.Equal(second, got)

	// When the first one is removed
	removed, ok := registry.Remove(first.ID)
	req.True(ok)
	req.Equal(first, removed)
	req.Equal([]contract.Subscription{second}, registry.All())

	// Then removing it again is a no-op
	_, ok = registry.Remove(first.ID)
	req.False(ok)
}

func TestRegistry_Add_Same_ID_Replaces(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	id := uuid.NewString()

	registry.Add(contract.Subscription{ID: id, Query: "v1"})
	registry.Add(contract.Subscription{ID: id, Query: "v2"})

	all := registry.All()
	req.Len(all, 1)
	req.Equal("v2", all[0].Query)
}
