package draft

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"psyplanner/internal/backend"
	"psyplanner/internal/model"
	"psyplanner/internal/session"
)

type fakeIdentity struct {
	sess *model.Session
}

func (f *fakeIdentity) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	return f.sess, nil
}

func (f *fakeIdentity) SignUp(ctx context.Context, email, password, displayName string) (*model.Session, error) {
	return f.sess, nil
}

func (f *fakeIdentity) SignOut(ctx context.Context) error { return nil }

func (f *fakeIdentity) Current(ctx context.Context) (*model.Session, error) {
	return f.sess, nil
}

type fakeRecords struct {
	mu      sync.Mutex
	inserts []struct {
		table string
		rec   backend.Record
	}
	insertErr error
	// block lets a test hold an insert open to exercise the in-flight gate.
	block chan struct{}
}

func (f *fakeRecords) Select(ctx context.Context, table string, filter backend.Filter, orderBy string) ([]backend.Record, error) {
	return nil, nil
}

func (f *fakeRecords) Insert(ctx context.Context, table string, rec backend.Record) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts = append(f.inserts, struct {
		table string
		rec   backend.Record
	}{table, rec})
	return f.insertErr
}

func (f *fakeRecords) insertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inserts)
}

func signedInStore(t *testing.T, userID string) *session.Store {
	t.Helper()
	st := session.NewStore(&fakeIdentity{sess: &model.Session{UserID: userID, Email: userID + "@example.com"}})
	require.NoError(t, st.Restore(context.Background()))
	return st
}

func signedOutStore() *session.Store {
	return session.NewStore(&fakeIdentity{})
}

func TestSubmitPaymentAppliesDefaultsAndOwnerTag(t *testing.T) {
	records := &fakeRecords{}
	c := New(KindPayment, signedInStore(t, "u1"), records)

	c.SetField("client_id", "c1")
	c.SetField("amount", "150.50")
	c.SetField("payment_date", "2024-01-10")

	require.NoError(t, c.Submit(context.Background()))
	require.Equal(t, 1, records.insertCount())

	ins := records.inserts[0]
	require.Equal(t, "payments", ins.table)
	require.Equal(t, "u1", ins.rec.Str("user_id"))
	require.Equal(t, "c1", ins.rec.Str("client_id"))
	require.Equal(t, 150.5, ins.rec["amount"])
	require.Equal(t, "RUB", ins.rec.Str("currency"))
	require.Equal(t, "2024-01-10", ins.rec.Str("payment_date"))

	// Success discards the draft.
	require.Empty(t, c.Field("client_id"))
	require.Empty(t, c.Err())
}

func TestSubmitSessionAppliesDefaults(t *testing.T) {
	records := &fakeRecords{}
	c := New(KindSession, signedInStore(t, "u1"), records)

	c.SetField("client_id", "c1")
	c.SetField("session_date", "2024-01-10")
	c.SetField("session_time", "14:00")

	require.NoError(t, c.Submit(context.Background()))
	require.Equal(t, 1, records.insertCount())

	rec := records.inserts[0].rec
	require.Equal(t, 60, rec["duration"])
	require.Equal(t, "Active session", rec.Str("session_type"))
}

func TestValidateMissingRequiredField(t *testing.T) {
	records := &fakeRecords{}
	c := New(KindSession, signedInStore(t, "u1"), records)

	c.SetField("client_id", "c1")
	c.SetField("session_date", "2024-01-10")
	// no session_time

	verr := c.Validate()
	require.NotNil(t, verr)
	require.Len(t, verr.Fields, 1)
	require.Equal(t, "session_time", verr.Fields[0].Field)

	err := c.Submit(context.Background())
	var gotVerr *ValidationError
	require.ErrorAs(t, err, &gotVerr)
	require.Zero(t, records.insertCount(), "invalid draft must not reach the network")
}

func TestValidateAmount(t *testing.T) {
	for _, tc := range []struct {
		amount string
		ok     bool
	}{
		{"150.50", true},
		{"0", true},
		{"0.01", true},
		{"-5", false},
		{"abc", false},
		{"1e999", false},
	} {
		records := &fakeRecords{}
		c := New(KindPayment, signedInStore(t, "u1"), records)
		c.SetField("client_id", "c1")
		c.SetField("payment_date", "2024-01-10")
		c.SetField("amount", tc.amount)

		err := c.Submit(context.Background())
		if tc.ok {
			require.NoError(t, err, "amount=%q", tc.amount)
		} else {
			var verr *ValidationError
			require.ErrorAs(t, err, &verr, "amount=%q", tc.amount)
			require.Zero(t, records.insertCount(), "amount=%q", tc.amount)
		}
	}
}

func TestSubmitWithoutSessionIsLocalReject(t *testing.T) {
	records := &fakeRecords{}
	c := New(KindNote, signedOutStore(), records)
	c.SetField("client_id", "c1")
	c.SetField("content", "hello")

	require.ErrorIs(t, c.Submit(context.Background()), ErrNoSession)
	require.Zero(t, records.insertCount())
	// Draft is retained for after sign-in.
	require.Equal(t, "hello", c.Field("content"))
}

func TestSubmitGateRejectsReentrantCalls(t *testing.T) {
	records := &fakeRecords{block: make(chan struct{})}
	c := New(KindNote, signedInStore(t, "u1"), records)
	c.SetField("client_id", "c1")
	c.SetField("content", "x")

	done := make(chan error, 1)
	go func() { done <- c.Submit(context.Background()) }()

	// Wait for the first submit to take the gate.
	for !c.Loading() {
		runtime.Gosched()
	}

	require.ErrorIs(t, c.Submit(context.Background()), ErrSubmitInFlight)

	close(records.block)
	require.NoError(t, <-done)
	require.Equal(t, 1, records.insertCount(), "exactly one insert despite concurrent clicks")
	require.False(t, c.Loading())
}

func TestSubmitFailureRetainsDraftAndMessage(t *testing.T) {
	records := &fakeRecords{insertErr: &backend.StoreError{Op: "insert", Table: "notes", Message: "constraint violated"}}
	c := New(KindNote, signedInStore(t, "u1"), records)
	c.SetField("client_id", "c1")
	c.SetField("content", "keep me")

	require.Error(t, c.Submit(context.Background()))
	require.Equal(t, "constraint violated", c.Err())
	require.Equal(t, "keep me", c.Field("content"))
	require.False(t, c.Loading())

	// The next edit clears the retained error.
	c.SetField("content", "edited")
	require.Empty(t, c.Err())
}

func TestSubmitFailureFallbackMessage(t *testing.T) {
	records := &fakeRecords{insertErr: errors.New("dial tcp: connection refused")}
	c := New(KindNote, signedInStore(t, "u1"), records)
	c.SetField("client_id", "c1")
	c.SetField("content", "x")

	require.Error(t, c.Submit(context.Background()))
	require.Equal(t, FallbackMessage, c.Err())
}

func TestClientKindSchema(t *testing.T) {
	records := &fakeRecords{}
	c := New(KindClient, signedInStore(t, "u7"), records)

	require.ErrorAs(t, c.Submit(context.Background()), new(*ValidationError))
	require.Zero(t, records.insertCount())

	c.SetField("full_name", "Ivan Petrov")
	require.NoError(t, c.Submit(context.Background()))
	rec := records.inserts[0].rec
	require.Equal(t, "clients", records.inserts[0].table)
	require.Equal(t, "u7", rec.Str("user_id"))
	require.Equal(t, "Ivan Petrov", rec.Str("full_name"))
}

func TestParseAmountRoundsToTwoDecimals(t *testing.T) {
	v, err := ParseAmount("10.005")
	require.NoError(t, err)
	require.Equal(t, 10.01, v)

	v, err = ParseAmount(" 150.50 ")
	require.NoError(t, err)
	require.Equal(t, 150.5, v)
}

func TestDurationValidation(t *testing.T) {
	records := &fakeRecords{}
	c := New(KindSession, signedInStore(t, "u1"), records)
	c.SetField("client_id", "c1")
	c.SetField("session_date", "2024-01-10")
	c.SetField("session_time", "14:00")
	c.SetField("duration", "ninety")

	var verr *ValidationError
	require.ErrorAs(t, c.Submit(context.Background()), &verr)
	require.Zero(t, records.insertCount())

	c.SetField("duration", "90")
	require.NoError(t, c.Submit(context.Background()))
	require.Equal(t, 90, records.inserts[0].rec["duration"])
}
