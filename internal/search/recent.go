// Package search holds client-side search state: recent queries and the
// craftsman search filters.
package search

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ustamapp/ustamapp-client/internal/storage"
)

// MaxRecentSearches bounds the stored history.
const MaxRecentSearches = 10

// RecentSearches keeps the newest queries first under
// storage.KeyRecentSearches.
type RecentSearches struct {
	store storage.Store
	mu    sync.Mutex
}

func NewRecentSearches(store storage.Store) (*RecentSearches, error) {
	if store == nil {
		return nil, fmt.Errorf("storage is required")
	}
	return &RecentSearches{store: store}, nil
}

func (r *RecentSearches) List(ctx context.Context) ([]string, error) {
	items, _, err := storage.GetJSON[[]string](ctx, r.store, storage.KeyRecentSearches)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Add moves query to the front, dropping a case-insensitive duplicate and
// anything beyond MaxRecentSearches. Blank queries are ignored.
func (r *RecentSearches) Add(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.List(ctx)
	if err != nil {
		return err
	}

	items := make([]string, 0, MaxRecentSearches)
	items = append(items, query)
	for _, item := range existing {
		if len(items) == MaxRecentSearches {
			break
		}
		if strings.EqualFold(item, query) {
			continue
		}
		items = append(items, item)
	}

	return storage.SetJSON(ctx, r.store, storage.KeyRecentSearches, items)
}

func (r *RecentSearches) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.Remove(ctx, storage.KeyRecentSearches)
}
