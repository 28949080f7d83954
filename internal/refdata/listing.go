package refdata

import (
	"context"
	"time"

	"psyplanner/internal/backend"
	"psyplanner/internal/model"
)

// The listing loaders below back the home views and `list` CLI commands.
// Same shape as Clients: one-shot, scoped to the requesting user, newest
// first.

func ClientDetails(ctx context.Context, rs backend.RecordStore, userID string) ([]model.Client, error) {
	recs, err := rs.Select(ctx, "clients",
		backend.Filter{Column: "user_id", Value: userID}, "full_name")
	if err != nil {
		return nil, err
	}
	out := make([]model.Client, 0, len(recs))
	for _, rec := range recs {
		out = append(out, model.Client{
			ID:        rec.Str("id"),
			UserID:    rec.Str("user_id"),
			FullName:  rec.Str("full_name"),
			Phone:     rec.Str("phone"),
			Email:     rec.Str("email"),
			Comment:   rec.Str("comment"),
			CreatedAt: parseTime(rec.Str("created_at")),
		})
	}
	return out, nil
}

func Sessions(ctx context.Context, rs backend.RecordStore, userID string) ([]model.SessionRecord, error) {
	recs, err := rs.Select(ctx, "sessions",
		backend.Filter{Column: "user_id", Value: userID}, "session_date DESC")
	if err != nil {
		return nil, err
	}
	out := make([]model.SessionRecord, 0, len(recs))
	for _, rec := range recs {
		out = append(out, model.SessionRecord{
			ID:          rec.Str("id"),
			UserID:      rec.Str("user_id"),
			ClientID:    rec.Str("client_id"),
			SessionDate: rec.Str("session_date"),
			SessionTime: rec.Str("session_time"),
			Duration:    rec.Int("duration"),
			SessionType: rec.Str("session_type"),
			Comment:     rec.Str("comment"),
			CreatedAt:   parseTime(rec.Str("created_at")),
		})
	}
	return out, nil
}

func Payments(ctx context.Context, rs backend.RecordStore, userID string) ([]model.Payment, error) {
	recs, err := rs.Select(ctx, "payments",
		backend.Filter{Column: "user_id", Value: userID}, "payment_date DESC")
	if err != nil {
		return nil, err
	}
	out := make([]model.Payment, 0, len(recs))
	for _, rec := range recs {
		out = append(out, model.Payment{
			ID:          rec.Str("id"),
			UserID:      rec.Str("user_id"),
			ClientID:    rec.Str("client_id"),
			Amount:      rec.Float("amount"),
			Currency:    rec.Str("currency"),
			PaymentDate: rec.Str("payment_date"),
			Comment:     rec.Str("comment"),
			CreatedAt:   parseTime(rec.Str("created_at")),
		})
	}
	return out, nil
}

func Notes(ctx context.Context, rs backend.RecordStore, userID string) ([]model.Note, error) {
	recs, err := rs.Select(ctx, "notes",
		backend.Filter{Column: "user_id", Value: userID}, "created_at DESC")
	if err != nil {
		return nil, err
	}
	out := make([]model.Note, 0, len(recs))
	for _, rec := range recs {
		out = append(out, model.Note{
			ID:        rec.Str("id"),
			UserID:    rec.Str("user_id"),
			ClientID:  rec.Str("client_id"),
			Content:   rec.Str("content"),
			CreatedAt: parseTime(rec.Str("created_at")),
		})
	}
	return out, nil
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}
