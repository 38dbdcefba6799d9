package keygen

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Format(t *testing.T) {
	re := regexp.MustCompile(`^XEN-2-[A-Z0-9]{6}$`)
	for i := 0; i < 200; i++ {
		k, err := Generate("XEN", 2)
		require.NoError(t, err)
		assert.Regexp(t, re, k)
	}
}

func TestGenerate_Varies(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		k, err := Generate("XEN", 1)
		require.NoError(t, err)
		seen[k] = true
	}
	assert.Greater(t, len(seen), 45)
}
