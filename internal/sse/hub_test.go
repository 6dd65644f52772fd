package sse

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/despensa_api/internal/category"
	"github.com/GTDGit/despensa_api/internal/models"
)

func TestHub_RegisterBroadcastUnregister(t *testing.T) {
	hub := NewHub()
	c := hub.Register("a")
	assert.Equal(t, 1, hub.ClientCount())

	hub.Broadcast(&ProductEvent{Event: EventProductDeleted, ProductID: 3})

	var ev ProductEvent
	require.NoError(t, json.Unmarshal(<-c.Events, &ev))
	assert.Equal(t, EventProductDeleted, ev.Event)
	assert.Equal(t, 3, ev.ProductID)

	hub.Unregister("a")
	assert.Zero(t, hub.ClientCount())
	_, open := <-c.Events
	assert.False(t, open)

	hub.Unregister("a")
}

func TestHub_FullBufferDropsEvents(t *testing.T) {
	hub := NewHub()
	c := hub.Register("slow")
	for i := 0; i < cap(c.Events)+10; i++ {
		hub.Broadcast(&ProductEvent{Event: EventProductUpdated, ProductID: i})
	}
	assert.Len(t, c.Events, cap(c.Events))
}

func TestHubNotifier_ProductEvents(t *testing.T) {
	hub := NewHub()
	n := NewHubNotifier(hub)

	// No clients: nothing to deliver, nothing to block on.
	n.NotifyProductCreated(&models.Product{ID: 1})

	c := hub.Register("a")
	n.NotifyProductUpdated(&models.Product{
		ID:       2,
		Name:     "Leche",
		Quantity: decimal.Zero,
		Category: category.Agotados,
	})

	var ev map[string]interface{}
	require.NoError(t, json.Unmarshal(<-c.Events, &ev))
	assert.Equal(t, "product.updated", ev["event"])
	assert.Equal(t, float64(2), ev["product_id"])
	assert.Equal(t, true, ev["depleted"])
	assert.Equal(t, "agotados", ev["category"])
}
