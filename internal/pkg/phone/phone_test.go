package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"+1 (246) 555-1234": "+12465551234",
		"1 246 555 1234":    "+12465551234",
		"12465551234":       "+12465551234",
		"+12465551234":      "+12465551234",
		"(246) 555.1234":    "+2465551234",
		"":                  "+",
		"n/a":               "+",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), "input %q", in)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, in := range []string{"+1 (246) 555-1234", "246-555-1234", "+44 20 7946 0958"} {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once))
	}
}

func TestHasDigits(t *testing.T) {
	assert.False(t, HasDigits("+"))
	assert.True(t, HasDigits("+1"))
}
