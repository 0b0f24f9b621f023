package shopify

import (
	"context"
	"encoding/json"
	"time"
)

// FetchAll retrieves a full resource collection across cursor pages. Each
// page request is preceded by a rate-limiter acquire; pages are separated by
// a fixed delay to smooth burst traffic. max > 0 stops the loop once that
// many items have accumulated and truncates the result to max.
//
// Failure of any page fails the whole fetch and no items are returned: a
// half-fetched collection would silently corrupt downstream reconciliation.
func (c *Client) FetchAll(ctx context.Context, shop, accessToken, resource string, max int) ([]json.RawMessage, error) {
	var items []json.RawMessage
	cursor := ""
	pages := 0

	for {
		if err := c.limiter.Acquire(ctx, shop); err != nil {
			return nil, err
		}

		pageItems, next, err := c.fetchPage(ctx, shop, accessToken, resource, cursor)
		if err != nil {
			return nil, err
		}
		pages++
		items = append(items, pageItems...)

		if max > 0 && len(items) >= max {
			items = items[:max]
			break
		}
		if next == "" {
			break
		}
		cursor = next

		t := time.NewTimer(c.pageDelay)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}

	c.logger.Debug().
		Str("shop", shop).
		Str("resource", resource).
		Int("pages", pages).
		Int("items", len(items)).
		Msg("Fetched resource collection")

	return items, nil
}
