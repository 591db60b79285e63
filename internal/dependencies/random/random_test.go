package random

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode(t *testing.T) {
	r := New()

	code := r.Code(6)
	assert.Len(t, code, 6)
	for _, ch := range code {
		assert.True(t, strings.ContainsRune(CodeAlphabet, ch), "unexpected %q in %q", ch, code)
	}

	assert.Empty(t, r.Code(0))
}
