package api

import (
	"context"

	"github.com/weekendtraveller/server/internal/refdata"
)

// DirectoryStore defines the read operations handlers need from storage.
type DirectoryStore interface {
	ListCurrencies(ctx context.Context) ([]string, error)
	SearchAirports(ctx context.Context, search string, offset, limit int) ([]refdata.Airport, error)
}

// CurrencyCache defines the cache operations for the currency read path.
type CurrencyCache interface {
	GetCurrencies(ctx context.Context) ([]string, error)
	SetCurrencies(ctx context.Context, codes []string) error
}

// RefreshTrigger defines the refresh operations the ops endpoint can kick.
type RefreshTrigger interface {
	RefreshCurrencies(ctx context.Context) error
	RefreshAirports(ctx context.Context, locale string) error
}
