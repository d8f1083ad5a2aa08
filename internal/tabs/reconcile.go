package tabs

import (
	"context"

	"github.com/Eliptic23/borja/internal/core"
)

// RequestLookup is the backing-store query consumed by the reconciliation
// sweep: it returns the request for an identifier, or (nil, nil) when no
// such request exists.
type RequestLookup interface {
	GetRequest(ctx context.Context, requestID string) (*core.Request, error)
}

// ReconcileTeam sweeps open team-collection tabs and re-queries the
// backing store for each one. A tab whose backing request is confirmed
// gone (nil result) is detached and marked dirty - this covers deletions
// that happened in another session and were never observed by the reorder
// resolver. Failed lookups are silently skipped; the sweep is best-effort
// and idempotent, so it can be re-run at any time.
func ReconcileTeam(ctx context.Context, reg *Registry, lookup RequestLookup) error {
	for _, t := range reg.Tabs() {
		sc, ok := t.Save.(TeamCollectionContext)
		if !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		req, err := lookup.GetRequest(ctx, sc.RequestID)
		if err != nil {
			continue
		}
		if req == nil {
			t.ClearSave()
		}
	}
	return nil
}
