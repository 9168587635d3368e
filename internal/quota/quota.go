// Copyright 2026 The Gloss Authors
// SPDX-License-Identifier: MIT

// Package quota implements the date-keyed daily usage counter that gates the
// shared credential.
package quota

import (
	"sync"
	"time"
)

// DefaultDailyCap is the number of shared-key uses allowed per day.
const DefaultDailyCap = 1000

const dateLayout = "2006-01-02"

// Usage is the counter state for one day.
type Usage struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Counter counts uses per local calendar day. It is in-memory only; a
// restart starts from zero. It is safe for concurrent use.
type Counter struct {
	mu    sync.Mutex
	cap   int
	usage Usage
	now   func() time.Time
}

// NewCounter returns a counter allowing dailyCap uses per day. A
// non-positive cap uses DefaultDailyCap.
func NewCounter(dailyCap int) *Counter {
	if dailyCap <= 0 {
		dailyCap = DefaultDailyCap
	}
	return &Counter{cap: dailyCap, now: time.Now}
}

// WithClock replaces the time source. Used by tests.
func (c *Counter) WithClock(now func() time.Time) *Counter {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
	return c
}

// roll resets the counter when the stored date is not today. Caller holds mu.
func (c *Counter) roll() {
	today := c.now().Format(dateLayout)
	if c.usage.Date != today {
		c.usage = Usage{Date: today}
	}
}

// Allow consumes one use and reports whether it was within the cap.
func (c *Counter) Allow() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roll()
	if c.usage.Count >= c.cap {
		return false
	}
	c.usage.Count++
	return true
}

// Remaining returns how many uses are left today.
func (c *Counter) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roll()
	return c.cap - c.usage.Count
}

// Usage returns a snapshot of today's counter.
func (c *Counter) Usage() Usage {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roll()
	return c.usage
}

// Cap returns the daily cap.
func (c *Counter) Cap() int { return c.cap }
