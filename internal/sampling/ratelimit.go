package sampling

import (
	"sync"
	"time"
)

const (
	// rateWindow is the fixed window duration for rate counting.
	rateWindow = 60 * time.Second

	// maxTrackedKeys caps the number of tracked keys per key space to
	// prevent unbounded growth over the process lifetime. Expired windows
	// are swept when the cap is reached.
	maxTrackedKeys = 4096
)

type rateEntry struct {
	count     int
	windowEnd time.Time
}

// Limiter is a dual-key fixed-window rate limiter with independent
// per-user and per-chat counters. Safe for concurrent use.
//
// Admission requires both key spaces to admit, but the user-side counter
// is consumed before the chat side is evaluated and is not rolled back
// when the chat side rejects. This asymmetry is deliberate and relied on
// by operators tuning the two thresholds together.
type Limiter struct {
	mu        sync.Mutex
	userLimit int
	chatLimit int
	users     map[int64]*rateEntry
	chats     map[int64]*rateEntry
	now       func() time.Time
}

// NewLimiter creates a Limiter with the given per-user and per-chat
// thresholds per 60-second window.
func NewLimiter(perUser, perChat int) *Limiter {
	return &Limiter{
		userLimit: perUser,
		chatLimit: perChat,
		users:     make(map[int64]*rateEntry),
		chats:     make(map[int64]*rateEntry),
		now:       time.Now,
	}
}

// Allow records a hit for both keys and reports whether the event is
// admitted. A key's entry is valid only while now < windowEnd; an expired
// entry is replaced, not merged.
func (l *Limiter) Allow(userID, chatID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if !l.hit(l.users, userID, l.userLimit, now) {
		return false
	}
	return l.hit(l.chats, chatID, l.chatLimit, now)
}

func (l *Limiter) hit(entries map[int64]*rateEntry, key int64, limit int, now time.Time) bool {
	e, ok := entries[key]
	if !ok || !now.Before(e.windowEnd) {
		if len(entries) >= maxTrackedKeys {
			sweep(entries, now)
		}
		entries[key] = &rateEntry{count: 1, windowEnd: now.Add(rateWindow)}
		return true
	}
	if e.count >= limit {
		return false
	}
	e.count++
	return true
}

// sweep removes expired windows; if every tracked window is still live,
// evicts arbitrary entries until under the cap.
func sweep(entries map[int64]*rateEntry, now time.Time) {
	for k, e := range entries {
		if !now.Before(e.windowEnd) {
			delete(entries, k)
		}
	}
	for len(entries) >= maxTrackedKeys {
		for k := range entries {
			delete(entries, k)
			break
		}
	}
}

// Reset clears both key spaces.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.users = make(map[int64]*rateEntry)
	l.chats = make(map[int64]*rateEntry)
}
