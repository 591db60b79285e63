//go:build !go1.24

package web_test

import (
	"context"
	"sync"
	"testing"
)

var testContexts sync.Map

// testContext returns a per-test context that is cancelled when the test
// finishes, mirroring testing.T.Context on toolchains older than Go 1.24
func testContext(t *testing.T) context.Context {
	if ctx, ok := testContexts.Load(t); ok {
		return ctx.(context.Context)
	}
	ctx, cancel := context.WithCancel(context.Background())
	testContexts.Store(t, ctx)
	t.Cleanup(func() {
		cancel()
		testContexts.Delete(t)
	})
	return ctx
}
