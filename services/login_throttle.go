package services

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"
)

const ThrottleCooldownCapSeconds = 30

// ThrottledError reports how long a client must wait before the next login.
type ThrottledError struct {
	WaitSeconds int
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("too many login attempts, try again in %d seconds", e.WaitSeconds)
}

type throttleEntry struct {
	failCount     int
	cooldownUntil time.Time
}

// LoginThrottle applies an exponential cooldown per key after failed logins.
type LoginThrottle struct {
	mu      sync.Mutex
	entries map[string]*throttleEntry
	now     func() time.Time
}

func NewLoginThrottle() *LoginThrottle {
	return &LoginThrottle{entries: make(map[string]*throttleEntry), now: time.Now}
}

func throttleKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// WaitSeconds returns how many seconds key must wait (0 if no cooldown).
func (t *LoginThrottle) WaitSeconds(key string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[throttleKey(key)]
	if !ok || e.cooldownUntil.IsZero() {
		return 0
	}
	now := t.now()
	if now.Before(e.cooldownUntil) {
		return int(e.cooldownUntil.Sub(now).Seconds()) + 1 // round up
	}
	return 0
}

// RecordFailed increments the fail count and sets cooldown to min(30, 2^fails) seconds.
func (t *LoginThrottle) RecordFailed(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	k := throttleKey(key)
	e, ok := t.entries[k]
	if !ok {
		e = &throttleEntry{}
		t.entries[k] = e
	}
	e.failCount++
	e.cooldownUntil = t.now().Add(time.Duration(CooldownSecondsForFailCount(e.failCount)) * time.Second)
}

// RecordSuccess forgets key.
func (t *LoginThrottle) RecordSuccess(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, throttleKey(key))
}

// CooldownSecondsForFailCount returns min(30, 2^failCount).
func CooldownSecondsForFailCount(failCount int) int {
	s := int(math.Pow(2, float64(failCount)))
	if s > ThrottleCooldownCapSeconds || s <= 0 {
		return ThrottleCooldownCapSeconds
	}
	return s
}
