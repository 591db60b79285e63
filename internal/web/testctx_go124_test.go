//go:build go1.24

package web_test

import (
	"context"
	"testing"
)

// testContext returns the test's context
func testContext(t *testing.T) context.Context {
	return t.Context()
}
