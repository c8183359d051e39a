package library

import (
	"context"
	"log/slog"
	"strings"

	"matinee/internal/catalog"
	"matinee/internal/logging"
)

// Service exposes read-only catalog queries.
type Service struct {
	store  *catalog.Store
	logger *slog.Logger
}

// New constructs a query service over the given store.
func New(store *catalog.Store, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logging.NewComponentLogger(logger, "library"),
	}
}

// Search returns catalog entries matching the text across title, genre,
// director, and actors. Empty text lists the whole catalog.
func (s *Service) Search(ctx context.Context, text string) ([]*catalog.Entry, error) {
	if strings.TrimSpace(text) == "" {
		return s.store.List(ctx, catalog.Filter{})
	}
	return s.store.Search(ctx, text)
}

// ByID returns the entry with the given identifier, or nil when absent.
func (s *Service) ByID(ctx context.Context, id int64) (*catalog.Entry, error) {
	return s.store.GetByID(ctx, id)
}

// List returns entries narrowed by the filter.
func (s *Service) List(ctx context.Context, filter catalog.Filter) ([]*catalog.Entry, error) {
	return s.store.List(ctx, filter)
}
