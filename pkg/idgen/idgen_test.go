package idgen

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Format(t *testing.T) {
	id, err := Generate()
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^tp-[0-9a-f]{8}$`), id)
	assert.Len(t, id, len(Prefix)+1+IDLength)
}

func TestGenerate_Unique(t *testing.T) {
	ids := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id, err := Generate()
		require.NoError(t, err)
		assert.False(t, ids[id], "duplicate ID %s", id)
		ids[id] = true
	}
}
