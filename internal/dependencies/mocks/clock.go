package mocks

import (
	"sync"
	"time"

	"github.com/mcoot/draftboard/internal/dependencies/clock"
)

// MockClock is a mock implementation of Clock for testing.
// Tickers created from it only fire when Tick is called.
type MockClock struct {
	mu          sync.Mutex
	currentTime time.Time
	tickers     []*MockTicker
}

// Ensure MockClock implements Clock
var _ clock.Clock = (*MockClock)(nil)

// NewMockClock creates a MockClock set to the given time
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{currentTime: t}
}

// Now returns the mocked current time
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentTime
}

// Advance moves the clock forward by the given duration
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentTime = c.currentTime.Add(d)
}

// Set sets the clock to the given time
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentTime = t
}

// NewTicker returns a ticker driven by Tick
func (c *MockClock) NewTicker(d time.Duration) clock.Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &MockTicker{c: make(chan time.Time, 1)}
	c.tickers = append(c.tickers, t)
	return t
}

// Tick fires every live ticker once with the current time.
// A tick is dropped if the previous one has not been consumed, like time.Ticker.
func (c *MockClock) Tick() {
	c.mu.Lock()
	now := c.currentTime
	tickers := make([]*MockTicker, 0, len(c.tickers))
	for _, t := range c.tickers {
		if !t.stopped() {
			tickers = append(tickers, t)
		}
	}
	c.tickers = tickers
	c.mu.Unlock()

	for _, t := range tickers {
		select {
		case t.c <- now:
		default:
		}
	}
}

// TickerCount returns the number of tickers that have not been stopped
func (c *MockClock) TickerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.tickers {
		if !t.stopped() {
			n++
		}
	}
	return n
}

// MockTicker is the ticker handed out by MockClock
type MockTicker struct {
	mu   sync.Mutex
	c    chan time.Time
	stop bool
}

func (t *MockTicker) C() <-chan time.Time {
	return t.c
}

func (t *MockTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stop = true
}

func (t *MockTicker) stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stop
}
