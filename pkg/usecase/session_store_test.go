package usecase_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/iract/pkg/usecase"
)

func TestSessionStore(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := usecase.NewSessionStore(time.Hour)
	store.SetClock(func() time.Time { return now })

	a := store.Create()
	b := store.Create()
	gt.Value(t, a.ID() != b.ID()).Equal(true)

	got, ok := store.Get(a.ID())
	gt.B(t, ok).True()
	gt.B(t, got == a).True()

	now = now.Add(50 * time.Minute)
	_, ok = store.Get(a.ID())
	gt.B(t, ok).True()

	// b was last seen 50 minutes ago, a just now
	now = now.Add(20 * time.Minute)
	gt.Number(t, store.Sweep()).Equal(1)
	gt.Number(t, store.Len()).Equal(1)

	_, ok = store.Get(b.ID())
	gt.B(t, ok).False()

	now = now.Add(2 * time.Hour)
	_, ok = store.Get(a.ID())
	gt.B(t, ok).False()
	gt.Number(t, store.Len()).Equal(0)
}
