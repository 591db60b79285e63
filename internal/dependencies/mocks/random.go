package mocks

import (
	"sync"

	"github.com/mcoot/draftboard/internal/dependencies/random"
)

// MockRandom hands out queued session codes. Once the queue is empty Code
// returns "", which the draft controller reports as a failure.
type MockRandom struct {
	mu    sync.Mutex
	codes []string
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Code returns the next queued code, ignoring length
func (r *MockRandom) Code(int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.codes) == 0 {
		return ""
	}
	code := r.codes[0]
	r.codes = r.codes[1:]
	return code
}

// QueueCodes adds codes to the queue
func (r *MockRandom) QueueCodes(codes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes = append(r.codes, codes...)
}

// Reset drops any queued codes
func (r *MockRandom) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes = nil
}
