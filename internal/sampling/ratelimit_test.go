package sampling

import (
	"testing"
	"time"
)

func newTestLimiter(perUser, perChat int) (*Limiter, *time.Time) {
	l := NewLimiter(perUser, perChat)
	now := time.Unix(1_700_000_000, 0)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestLimiter_UserLimit(t *testing.T) {
	l, _ := newTestLimiter(3, 100)

	for i := 0; i < 3; i++ {
		if !l.Allow(1, -100) {
			t.Fatalf("Allow() = false on hit %d, want true", i+1)
		}
	}
	if l.Allow(1, -100) {
		t.Error("Allow() = true on 4th hit within window, want false")
	}
	if !l.Allow(2, -100) {
		t.Error("Allow() = false for a different user, counters must be per-key")
	}
}

func TestLimiter_WindowReset(t *testing.T) {
	l, now := newTestLimiter(2, 100)

	l.Allow(1, -100)
	l.Allow(1, -100)
	if l.Allow(1, -100) {
		t.Fatal("Allow() = true over the limit")
	}

	*now = now.Add(rateWindow)
	if !l.Allow(1, -100) {
		t.Error("Allow() = false after window expiry, want a fresh window")
	}
}

// A chat-side rejection still consumes the user-side counter. Operators
// rely on this when tuning the two thresholds together.
func TestLimiter_UserCounterConsumedOnChatReject(t *testing.T) {
	l, _ := newTestLimiter(3, 1)

	if !l.Allow(1, -100) {
		t.Fatal("first hit rejected")
	}
	// Chat now at its limit: rejected, but user counter advances.
	if l.Allow(1, -100) {
		t.Fatal("Allow() = true with chat at limit")
	}
	if l.Allow(1, -100) {
		t.Fatal("Allow() = true with chat at limit")
	}
	// User has consumed 3 of 3; a fresh chat still sees the user exhausted.
	if l.Allow(1, -200) {
		t.Error("Allow() = true, want user counter exhausted by chat-side rejections")
	}
}

func TestLimiter_IndependentChats(t *testing.T) {
	l, _ := newTestLimiter(100, 1)

	if !l.Allow(1, -100) {
		t.Fatal("first hit rejected")
	}
	if l.Allow(2, -100) {
		t.Error("Allow() = true with chat at limit for a different user")
	}
	if !l.Allow(3, -200) {
		t.Error("Allow() = false for a different chat")
	}
}

func TestLimiter_Reset(t *testing.T) {
	l, _ := newTestLimiter(1, 1)

	l.Allow(1, -100)
	if l.Allow(1, -100) {
		t.Fatal("Allow() = true over the limit")
	}

	l.Reset()
	if !l.Allow(1, -100) {
		t.Error("Allow() = false after Reset()")
	}
}

func TestLimiter_BoundedTracking(t *testing.T) {
	l, now := newTestLimiter(1000, 1000)

	for i := 0; i < maxTrackedKeys; i++ {
		l.Allow(int64(i), -1)
	}
	if len(l.users) != maxTrackedKeys {
		t.Fatalf("tracked users = %d, want %d", len(l.users), maxTrackedKeys)
	}

	// All windows expired: the next new key sweeps them out.
	*now = now.Add(rateWindow)
	l.Allow(int64(maxTrackedKeys), -1)
	if len(l.users) >= maxTrackedKeys {
		t.Errorf("tracked users = %d after sweep, want under %d", len(l.users), maxTrackedKeys)
	}
}

func TestLimiter_EvictsLiveEntriesAtCap(t *testing.T) {
	l, _ := newTestLimiter(1000, 1000)

	for i := 0; i <= maxTrackedKeys; i++ {
		if !l.Allow(int64(i), int64(-i-1)) {
			t.Fatalf("Allow() = false for key %d under the limit", i)
		}
	}
	if len(l.users) > maxTrackedKeys {
		t.Errorf("tracked users = %d, want at most %d", len(l.users), maxTrackedKeys)
	}
}
