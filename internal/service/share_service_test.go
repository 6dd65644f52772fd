package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/despensa_api/internal/cache"
	"github.com/GTDGit/despensa_api/internal/utils"
)

// memShareStore is an in-memory ShareStore.
type memShareStore struct {
	mu    sync.Mutex
	lists map[string]cache.SharedList
	err   error
}

func (m *memShareStore) Save(ctx context.Context, list *cache.SharedList, ttl time.Duration) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lists == nil {
		m.lists = map[string]cache.SharedList{}
	}
	list.ExpiresAt = time.Now().Add(ttl)
	m.lists[list.Token] = *list
	return nil
}

func (m *memShareStore) Get(ctx context.Context, token string) (*cache.SharedList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lists[token]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return &l, nil
}

func TestDepletedMessageAndWhatsAppURL(t *testing.T) {
	products := sample()
	msg := DepletedMessage(Depleted(products))
	assert.Equal(t, "🛒 Productos agotados:\n\n- Yogur\n- Pan\n", msg)

	u := WhatsAppURL("- Pan y leche\n")
	assert.Equal(t, "https://wa.me/?text=-%20Pan%20y%20leche%0A", u)
}

func TestShareService_NoDepletedProducts(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Create(context.Background(), &CreateProductRequest{Name: "Arroz", Quantity: dec("1")})
	require.NoError(t, err)

	share := NewShareService(svc, nil, time.Hour, "")
	_, err = share.ShareDepleted(context.Background())
	assert.ErrorIs(t, err, utils.ErrNoDepletedProducts)
}

func TestShareService_WithoutStore(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	p, err := svc.Create(ctx, &CreateProductRequest{Name: "Leche", Quantity: dec("1"), Category: "lacteos"})
	require.NoError(t, err)
	_, err = svc.ApplyDelta(ctx, p.ID, decimal.NewFromInt(-1))
	require.NoError(t, err)

	share := NewShareService(svc, nil, time.Hour, "https://casa.example/")
	got, err := share.ShareDepleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Count)
	assert.Equal(t, "🛒 Productos agotados:\n\n- Leche\n", got.Message)
	assert.True(t, strings.HasPrefix(got.WhatsAppURL, "https://wa.me/?text="))
	assert.Empty(t, got.ShareURL)

	_, err = share.GetShared(ctx, "share_x")
	assert.ErrorIs(t, err, utils.ErrShareUnavailable)
}

func TestShareService_PublishesLink(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, &CreateProductRequest{Name: "Sal", Quantity: dec("0")})
	require.NoError(t, err)

	store := &memShareStore{}
	share := NewShareService(svc, store, time.Hour, "https://casa.example/")
	got, err := share.ShareDepleted(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, got.Token)
	assert.Equal(t, "https://casa.example/api/share/"+got.Token, got.ShareURL)
	require.NotNil(t, got.ExpiresAt)

	list, err := share.GetShared(ctx, got.Token)
	require.NoError(t, err)
	assert.Equal(t, got.Message, list.Message)

	_, err = share.GetShared(ctx, "share_missing")
	assert.ErrorIs(t, err, utils.ErrShareNotFound)
}

func TestShareService_StoreFailureStillReturnsMessage(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, &CreateProductRequest{Name: "Sal"})
	require.NoError(t, err)

	share := NewShareService(svc, &memShareStore{err: errors.New("redis down")}, time.Hour, "")
	got, err := share.ShareDepleted(ctx)
	require.NoError(t, err)
	assert.Empty(t, got.Token)
	assert.NotEmpty(t, got.Message)
}
