package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/weekendtraveller/server/internal/refdata"
)

// ErrEmptyDataset reports that the provider answered successfully but the
// payload yielded zero usable records after projection. Treated like an
// upstream failure — the refresh aborts and the previous generation keeps
// serving — but logged distinctly, since it points at a different provider
// condition (bad locale, outage behind a 200).
var ErrEmptyDataset = errors.New("no usable records in upstream payload")

// UpstreamClient defines the provider calls needed by the Refresher.
type UpstreamClient interface {
	ListCurrencies(ctx context.Context) ([]refdata.Currency, error)
	ListPlaceHierarchy(ctx context.Context, locale string) (map[string]refdata.Place, error)
}

// Store defines the replace operations needed by the Refresher.
type Store interface {
	ReplaceCurrencies(ctx context.Context, codes []string) error
	ReplaceAirports(ctx context.Context, airports []refdata.Airport) error
}

// CurrencyCache defines the cache invalidation needed after a currency commit.
type CurrencyCache interface {
	Invalidate(ctx context.Context) error
}

// Refresher runs one refresh cycle per collection: fetch from the provider,
// transform, and atomically replace the stored generation. All failure paths
// leave the existing data untouched.
type Refresher struct {
	upstream UpstreamClient
	store    Store
	cache    CurrencyCache
	locale   string
	log      *slog.Logger
	group    singleflight.Group
}

// NewRefresher constructs a Refresher. locale selects the place hierarchy
// language for scheduled airport refreshes.
func NewRefresher(upstream UpstreamClient, store Store, cache CurrencyCache, locale string, log *slog.Logger) *Refresher {
	return &Refresher{
		upstream: upstream,
		store:    store,
		cache:    cache,
		locale:   locale,
		log:      log,
	}
}

// RefreshCurrencies pulls the provider's currency list and swaps the stored
// collection. Overlapping calls collapse into a single in-flight refresh.
// Idempotent: re-running against unchanged upstream data reproduces the same
// stored set.
func (r *Refresher) RefreshCurrencies(ctx context.Context) error {
	_, err, _ := r.group.Do("currencies", func() (any, error) {
		return nil, r.refreshCurrencies(ctx)
	})
	return err
}

func (r *Refresher) refreshCurrencies(ctx context.Context) error {
	currencies, err := r.upstream.ListCurrencies(ctx)
	if err != nil {
		return fmt.Errorf("refreshing currencies: %w", err)
	}

	codes := projectCodes(currencies)
	if len(codes) == 0 {
		return fmt.Errorf("refreshing currencies: %w", ErrEmptyDataset)
	}

	if err := r.store.ReplaceCurrencies(ctx, codes); err != nil {
		return fmt.Errorf("refreshing currencies: %w", err)
	}

	// Best effort: a stale cached list expires on its own TTL.
	if err := r.cache.Invalidate(ctx); err != nil {
		r.log.Warn("currency cache invalidation failed after refresh", "err", err)
	}

	r.log.Info("currencies refreshed", "count", len(codes))
	return nil
}

// projectCodes extracts clean currency codes: trimmed, uppercased, 3 letters,
// no duplicates.
func projectCodes(currencies []refdata.Currency) []string {
	seen := make(map[string]struct{}, len(currencies))
	codes := make([]string, 0, len(currencies))
	for _, c := range currencies {
		code := strings.ToUpper(strings.TrimSpace(c.Code))
		if len(code) != 3 {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	return codes
}

// RefreshAirports pulls the place hierarchy for locale, resolves it into
// airport records, and swaps the stored collection. Overlapping calls
// collapse into a single in-flight refresh regardless of locale.
func (r *Refresher) RefreshAirports(ctx context.Context, locale string) error {
	_, err, _ := r.group.Do("airports", func() (any, error) {
		return nil, r.refreshAirports(ctx, locale)
	})
	return err
}

func (r *Refresher) refreshAirports(ctx context.Context, locale string) error {
	places, err := r.upstream.ListPlaceHierarchy(ctx, locale)
	if err != nil {
		return fmt.Errorf("refreshing airports for %s: %w", locale, err)
	}

	airports := refdata.ResolveAirports(places)
	if len(airports) == 0 {
		return fmt.Errorf("refreshing airports for %s: %w", locale, ErrEmptyDataset)
	}

	if err := r.store.ReplaceAirports(ctx, airports); err != nil {
		return fmt.Errorf("refreshing airports for %s: %w", locale, err)
	}

	r.log.Info("airports refreshed", "locale", locale, "count", len(airports))
	return nil
}

// Run executes one full refresh cycle: both collections, concurrently. Every
// error is logged and contained here — callers only ever observe that the
// attempt completed. A failed collection keeps serving its previous
// generation until the next attempt.
func (r *Refresher) Run(ctx context.Context) {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := r.RefreshCurrencies(gCtx); err != nil {
			r.logFailure(err, "collection", "currencies")
		}
		return nil
	})

	g.Go(func() error {
		if err := r.RefreshAirports(gCtx, r.locale); err != nil {
			r.logFailure(err, "collection", "airports", "locale", r.locale)
		}
		return nil
	})

	_ = g.Wait()
}

func (r *Refresher) logFailure(err error, args ...any) {
	if errors.Is(err, ErrEmptyDataset) {
		r.log.Error("refresh aborted: upstream dataset empty", append(args, "err", err)...)
		return
	}
	r.log.Error("refresh failed", append(args, "err", err)...)
}
