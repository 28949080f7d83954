package refdata

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"psyplanner/internal/backend"
)

type captureStore struct {
	rows []backend.Record
	err  error

	table   string
	filter  backend.Filter
	orderBy string
}

func (c *captureStore) Select(ctx context.Context, table string, filter backend.Filter, orderBy string) ([]backend.Record, error) {
	c.table = table
	c.filter = filter
	c.orderBy = orderBy
	return c.rows, c.err
}

func (c *captureStore) Insert(ctx context.Context, table string, rec backend.Record) error {
	return nil
}

func TestClientsScopesToRequestingUser(t *testing.T) {
	st := &captureStore{}
	_, err := Clients(context.Background(), st, "u1")
	require.NoError(t, err)
	require.Equal(t, "clients", st.table)
	require.Equal(t, backend.Filter{Column: "user_id", Value: "u1"}, st.filter)
	require.Equal(t, "full_name", st.orderBy)
}

func TestClientsSortedAscendingEvenIfBackendIgnoresOrder(t *testing.T) {
	st := &captureStore{rows: []backend.Record{
		{"id": "c3", "full_name": "zoe"},
		{"id": "c1", "full_name": "Anna"},
		{"id": "c2", "full_name": "boris"},
	}}

	refs, err := Clients(context.Background(), st, "u1")
	require.NoError(t, err)
	require.Len(t, refs, 3)
	require.Equal(t, []string{"Anna", "boris", "zoe"}, []string{refs[0].FullName, refs[1].FullName, refs[2].FullName})
}

func TestClientsPropagatesError(t *testing.T) {
	st := &captureStore{err: errors.New("boom")}
	refs, err := Clients(context.Background(), st, "u1")
	require.Error(t, err)
	require.Nil(t, refs)
}

func TestSessionsListingNewestFirstOrderHint(t *testing.T) {
	st := &captureStore{rows: []backend.Record{
		{
			"id": "s1", "user_id": "u1", "client_id": "c1",
			"session_date": "2024-01-10", "session_time": "14:00",
			"duration": int64(60), "session_type": "Active session",
			"comment": "", "created_at": "2024-01-10T14:00:00Z",
		},
	}}

	records, err := Sessions(context.Background(), st, "u1")
	require.NoError(t, err)
	require.Equal(t, "sessions", st.table)
	require.Equal(t, "session_date DESC", st.orderBy)
	require.Len(t, records, 1)
	require.Equal(t, 60, records[0].Duration)
	require.Equal(t, "14:00", records[0].SessionTime)
}

func TestPaymentsListingMapsNumericAmount(t *testing.T) {
	st := &captureStore{rows: []backend.Record{
		{
			"id": "p1", "user_id": "u1", "client_id": "c1",
			"amount": 150.5, "currency": "RUB",
			"payment_date": "2024-01-10", "comment": "", "created_at": "2024-01-10T00:00:00Z",
		},
	}}

	payments, err := Payments(context.Background(), st, "u1")
	require.NoError(t, err)
	require.Len(t, payments, 1)
	require.Equal(t, 150.5, payments[0].Amount)
	require.Equal(t, "RUB", payments[0].Currency)
}
