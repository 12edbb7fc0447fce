// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package httpx

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const defaultMinRequestInterval = 250 * time.Millisecond

type RateLimitWaitError struct {
	Provider string
	Wait     time.Duration
	MaxWait  time.Duration
}

func (e *RateLimitWaitError) Error() string {
	return fmt.Sprintf("provider %s blocked by rate limit: requires %s wait but maximum allowed is %s", e.Provider, e.Wait, e.MaxWait)
}

func (e *RateLimitWaitError) Is(target error) bool {
	_, ok := target.(*RateLimitWaitError)
	return ok
}

type providerRateState struct {
	lastRequest   time.Duration
	cooldownUntil time.Duration
}

// RateLimiter spaces requests per provider and honours cooldowns set after
// a provider answered 429.
type RateLimiter struct {
	mu          sync.Mutex
	minInterval time.Duration
	intervals   map[string]time.Duration
	maxWait     time.Duration
	states      map[string]*providerRateState
	startTime   time.Time
}

func NewRateLimiter(minInterval, maxWait time.Duration) *RateLimiter {
	if minInterval <= 0 {
		minInterval = defaultMinRequestInterval
	}
	return &RateLimiter{
		minInterval: minInterval,
		intervals:   make(map[string]time.Duration),
		maxWait:     maxWait,
		states:      make(map[string]*providerRateState),
		startTime:   time.Now(),
	}
}

// SetInterval overrides the minimum spacing for one provider.
func (r *RateLimiter) SetInterval(provider string, interval time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if interval <= 0 {
		delete(r.intervals, provider)
		return
	}
	r.intervals[provider] = interval
}

// BeforeRequest blocks until provider may be called again.
func (r *RateLimiter) BeforeRequest(ctx context.Context, provider string) error {
	if r == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		now := time.Since(r.startTime)
		wait := r.computeWaitLocked(provider, now)
		if wait <= 0 {
			r.getStateLocked(provider).lastRequest = now
			return nil
		}

		if r.maxWait > 0 && wait > r.maxWait {
			return &RateLimitWaitError{Provider: provider, Wait: wait, MaxWait: r.maxWait}
		}

		timer := time.NewTimer(wait)
		r.mu.Unlock()
		select {
		case <-ctx.Done():
			if !timer.Stop() {
				<-timer.C
			}
			r.mu.Lock()
			return ctx.Err()
		case <-timer.C:
			r.mu.Lock()
		}
	}
}

func (r *RateLimiter) SetCooldown(provider string, until time.Time) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	state := r.getStateLocked(provider)
	cooldownDur := until.Sub(r.startTime)
	if cooldownDur > state.cooldownUntil {
		state.cooldownUntil = cooldownDur
	}
}

// IsInCooldown checks if a provider is currently in cooldown without blocking.
func (r *RateLimiter) IsInCooldown(provider string) (bool, time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state := r.getStateLocked(provider)
	now := time.Since(r.startTime)
	if state.cooldownUntil > 0 && state.cooldownUntil > now {
		return true, r.startTime.Add(state.cooldownUntil)
	}
	return false, time.Time{}
}

// NextWait returns how long a request to provider would have to wait.
func (r *RateLimiter) NextWait(provider string) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.computeWaitLocked(provider, time.Since(r.startTime))
}

func (r *RateLimiter) computeWaitLocked(provider string, now time.Duration) time.Duration {
	state := r.getStateLocked(provider)

	var wait time.Duration
	if state.cooldownUntil > 0 && state.cooldownUntil > now {
		wait = state.cooldownUntil - now
	}

	interval := r.minInterval
	if override, ok := r.intervals[provider]; ok {
		interval = override
	}
	if state.lastRequest >= 0 {
		next := state.lastRequest + interval
		if next > now && next-now > wait {
			wait = next - now
		}
	}

	return wait
}

func (r *RateLimiter) getStateLocked(provider string) *providerRateState {
	state, ok := r.states[provider]
	if !ok {
		state = &providerRateState{lastRequest: -1}
		r.states[provider] = state
	}
	return state
}
