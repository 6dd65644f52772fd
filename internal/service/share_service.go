package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/despensa_api/internal/cache"
	"github.com/GTDGit/despensa_api/internal/models"
	"github.com/GTDGit/despensa_api/internal/utils"
)

const (
	depletedHeader = "🛒 Productos agotados:\n\n"
	whatsAppBase   = "https://wa.me/?text="
)

// ShareStore keeps published share messages.
type ShareStore interface {
	Save(ctx context.Context, list *cache.SharedList, ttl time.Duration) error
	Get(ctx context.Context, token string) (*cache.SharedList, error)
}

// ShareService builds the shopping message of depleted products and
// optionally publishes it behind a share link.
type ShareService struct {
	products *ProductService
	store    ShareStore
	ttl      time.Duration
	baseURL  string
}

// NewShareService constructs a ShareService. A nil store disables share links.
func NewShareService(products *ProductService, store ShareStore, ttl time.Duration, baseURL string) *ShareService {
	return &ShareService{
		products: products,
		store:    store,
		ttl:      ttl,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

// DepletedShare is the outcome of sharing the depleted list.
type DepletedShare struct {
	Message     string     `json:"message"`
	Count       int        `json:"count"`
	WhatsAppURL string     `json:"whatsapp_url"`
	Token       string     `json:"token,omitempty"`
	ShareURL    string     `json:"share_url,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// Depleted returns the products currently out of stock, in id order.
func Depleted(products []models.Product) []models.Product {
	out := make([]models.Product, 0)
	for i := range products {
		if products[i].Depleted() {
			out = append(out, products[i])
		}
	}
	return out
}

// DepletedMessage renders the shopping message for depleted products.
func DepletedMessage(depleted []models.Product) string {
	var b strings.Builder
	b.WriteString(depletedHeader)
	for _, p := range depleted {
		b.WriteString("- ")
		b.WriteString(p.Name)
		b.WriteString("\n")
	}
	return b.String()
}

// WhatsAppURL returns a wa.me link that opens msg in a new chat.
// Spaces are encoded as %20.
func WhatsAppURL(msg string) string {
	return whatsAppBase + strings.ReplaceAll(url.QueryEscape(msg), "+", "%20")
}

// ShareDepleted builds the message for every depleted product. When a store
// is configured the message is also published under a fresh token.
func (s *ShareService) ShareDepleted(ctx context.Context) (*DepletedShare, error) {
	all, err := s.products.List(ctx, ListQuery{})
	if err != nil {
		return nil, err
	}
	depleted := Depleted(all)
	if len(depleted) == 0 {
		return nil, utils.ErrNoDepletedProducts
	}

	msg := DepletedMessage(depleted)
	share := &DepletedShare{
		Message:     msg,
		Count:       len(depleted),
		WhatsAppURL: WhatsAppURL(msg),
	}
	if s.store == nil {
		return share, nil
	}

	token, err := utils.GenerateShareToken()
	if err != nil {
		return nil, err
	}
	list := &cache.SharedList{Token: token, Message: msg, Count: len(depleted)}
	if err := s.store.Save(ctx, list, s.ttl); err != nil {
		// The message is still usable without a link.
		log.Warn().Err(err).Msg("Failed to publish shared list")
		return share, nil
	}

	share.Token = token
	share.ShareURL = s.baseURL + "/api/share/" + token
	share.ExpiresAt = &list.ExpiresAt
	return share, nil
}

// GetShared returns a published list by token.
func (s *ShareService) GetShared(ctx context.Context, token string) (*cache.SharedList, error) {
	if s.store == nil {
		return nil, utils.ErrShareUnavailable
	}
	list, err := s.store.Get(ctx, token)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, utils.ErrShareNotFound
	}
	if err != nil {
		return nil, storageError("get shared list", err)
	}
	return list, nil
}
