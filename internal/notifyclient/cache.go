package notifyclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"foodhub/internal/domain"
	"foodhub/internal/dto"
)

const ordersPath = "/api/admin/orders"

// OrderCache holds the dashboard's copy of the newest orders. A new order
// event invalidates it by refetching the whole page.
type OrderCache struct {
	baseURL string
	token   string
	limit   int
	http    *http.Client

	mu        sync.RWMutex
	orders    []dto.OrderResponse
	fetchedAt time.Time

	// Refreshes overlap during a burst of orders. Each takes the next
	// generation when it starts, and a result is only stored if nothing
	// started later has been stored already.
	issued uint64
	stored uint64
}

func NewOrderCache(baseURL, token string, limit int, client *http.Client) *OrderCache {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &OrderCache{
		baseURL: baseURL,
		token:   token,
		limit:   limit,
		http:    client,
	}
}

func (c *OrderCache) Name() string { return "order_cache" }

func (c *OrderCache) Apply(ctx context.Context, _ domain.Event) error {
	return c.Refresh(ctx)
}

func (c *OrderCache) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.issued++
	generation := c.issued
	c.mu.Unlock()

	u := c.baseURL + ordersPath
	if c.limit > 0 {
		u += "?" + url.Values{"limit": {strconv.Itoa(c.limit)}}.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("building orders request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetching orders: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetching orders: unexpected status %d", resp.StatusCode)
	}

	var list dto.OrderListResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return fmt.Errorf("decoding orders: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if generation < c.stored {
		return nil
	}
	c.orders = list.Orders
	c.fetchedAt = time.Now()
	c.stored = generation
	return nil
}

// Orders returns a copy of the cached page, newest first.
func (c *OrderCache) Orders() []dto.OrderResponse {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]dto.OrderResponse, len(c.orders))
	copy(out, c.orders)
	return out
}

func (c *OrderCache) FetchedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetchedAt
}
