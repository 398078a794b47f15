package booking

import (
	"context"
	"testing"
	"time"

	"github.com/nekogravitycat/barbershop-booking-backend/internal/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	s := newSession("s1", flowNow)
	require.NoError(t, store.Save(ctx, s))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	at := schedule.MustParseClock("09:00")
	got.Selection.Time = &at

	again, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, again.Selection.Time)
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := flowNow
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, newSession("s1", flowNow)))

	now = now.Add(59 * time.Second)
	_, err := store.Get(ctx, "s1")
	require.NoError(t, err)

	now = now.Add(time.Second)
	_, err = store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStore_Lock(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	unlock, err := store.Lock(ctx, "s1", 0)
	require.NoError(t, err)

	_, err = store.Lock(ctx, "s1", 0)
	assert.ErrorIs(t, err, ErrSessionBusy)

	// Other sessions are independent.
	other, err := store.Lock(ctx, "s2", 0)
	require.NoError(t, err)
	other()

	go func() {
		time.Sleep(30 * time.Millisecond)
		unlock()
	}()
	unlock, err = store.Lock(ctx, "s1", time.Second)
	require.NoError(t, err)
	unlock()
}

func TestMemoryStore_LockHonoursContext(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	unlock, err := store.Lock(context.Background(), "s1", 0)
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = store.Lock(ctx, "s1", time.Minute)
	assert.ErrorIs(t, err, ErrSessionBusy)
}
