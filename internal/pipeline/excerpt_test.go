package pipeline

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestExcerpt_CutsOnRuneBoundary(t *testing.T) {
	// The rupee sign straddles the cut position.
	text := strings.Repeat("a", excerptLength-1) + "₹5000"

	got := excerpt(text)

	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("a", excerptLength-1), got)
}

func TestExcerpt_ShortTextUntouched(t *testing.T) {
	assert.Equal(t, "short ₹ text", excerpt("  short ₹ text  "))
}
