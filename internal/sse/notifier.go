package sse

import (
	"time"

	"github.com/GTDGit/despensa_api/internal/models"
)

// ProductNotifier is the interface services use to emit product events.
type ProductNotifier interface {
	NotifyProductCreated(p *models.Product)
	NotifyProductUpdated(p *models.Product)
	NotifyProductDeleted(id int)
}

// HubNotifier implements ProductNotifier using the SSE Hub.
type HubNotifier struct {
	hub *Hub
}

// NewHubNotifier creates a notifier backed by the given Hub.
func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifyProductCreated(p *models.Product) {
	if n.hub.ClientCount() == 0 {
		return
	}
	n.hub.Broadcast(productToEvent(EventProductCreated, p))
}

func (n *HubNotifier) NotifyProductUpdated(p *models.Product) {
	if n.hub.ClientCount() == 0 {
		return
	}
	n.hub.Broadcast(productToEvent(EventProductUpdated, p))
}

func (n *HubNotifier) NotifyProductDeleted(id int) {
	if n.hub.ClientCount() == 0 {
		return
	}
	n.hub.Broadcast(&ProductEvent{
		Event:     EventProductDeleted,
		ProductID: id,
		Timestamp: time.Now(),
	})
}

func productToEvent(eventType EventType, p *models.Product) *ProductEvent {
	qty := p.Quantity
	return &ProductEvent{
		Event:     eventType,
		ProductID: p.ID,
		Name:      p.Name,
		Quantity:  &qty,
		Category:  p.Category,
		Depleted:  p.Depleted(),
		Timestamp: time.Now(),
	}
}

// NopNotifier is a no-op implementation for when SSE is not needed.
type NopNotifier struct{}

func (n *NopNotifier) NotifyProductCreated(p *models.Product) {}
func (n *NopNotifier) NotifyProductUpdated(p *models.Product) {}
func (n *NopNotifier) NotifyProductDeleted(id int)            {}
