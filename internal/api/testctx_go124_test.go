//go:build go1.24

package api_test

import (
	"context"
	"testing"
)

// testContext returns the test's context
func testContext(t *testing.T) context.Context {
	return t.Context()
}
