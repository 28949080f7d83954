// Package refdata loads user-scoped reference lists used to populate
// selection controls.
package refdata

import (
	"context"
	"sort"
	"strings"

	"psyplanner/internal/backend"
	"psyplanner/internal/model"
)

// Clients fetches the clients owned by userID, ordered by full name
// ascending. One-shot: callers re-invoke it after mutations elsewhere.
//
// The order-by is pushed to the store, but the result is sorted again here so
// the contract holds for backends that ignore ordering hints.
func Clients(ctx context.Context, rs backend.RecordStore, userID string) ([]model.ClientRef, error) {
	recs, err := rs.Select(ctx, "clients",
		backend.Filter{Column: "user_id", Value: userID}, "full_name")
	if err != nil {
		return nil, err
	}

	refs := make([]model.ClientRef, 0, len(recs))
	for _, rec := range recs {
		refs = append(refs, model.ClientRef{
			ID:       rec.Str("id"),
			FullName: rec.Str("full_name"),
		})
	}
	sort.SliceStable(refs, func(i, j int) bool {
		return strings.ToLower(refs[i].FullName) < strings.ToLower(refs[j].FullName)
	})
	return refs, nil
}
