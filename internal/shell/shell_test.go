package shell

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tc := []struct {
		input  string
		tokens []string
	}{
		{input: "", tokens: []string{}},
		{input: "curl http://h", tokens: []string{"curl", "http://h"}},
		{input: "  a\t b \n c  ", tokens: []string{"a", "b", "c"}},
		{input: `-H 'Content-Type: application/json'`, tokens: []string{"-H", "Content-Type: application/json"}},
		{input: `-d "{\"a\":1}"`, tokens: []string{"-d", `{"a":1}`}},
		{input: `-d '{"a":1}'`, tokens: []string{"-d", `{"a":1}`}},
		{input: `a\ b c`, tokens: []string{"a b", "c"}},
		{input: "curl \\\n  http://h", tokens: []string{"curl", "http://h"}},
		{input: "curl \\\r\n  http://h", tokens: []string{"curl", "http://h"}},
		{input: `x''y "" z`, tokens: []string{"xy", "", "z"}},
	}
	for _, c := range tc {
		tokens, err := Split(c.input)
		require.NoError(t, err, c.input)
		assert.Equal(t, c.tokens, tokens, c.input)
	}
}

func TestSplit_RoundTrip(t *testing.T) {
	sequences := [][]string{
		{"curl", "http://example.com/a", "-X", "POST"},
		{"one"},
		{"a", "b", "c", "d", "e"},
	}
	for _, seq := range sequences {
		tokens, err := Split(strings.Join(seq, " "))
		require.NoError(t, err)
		assert.Equal(t, seq, tokens)
	}
}

func TestSplit_JoinRoundTrip(t *testing.T) {
	seq := []string{"curl", "-H", "X-A: 'quoted' \"both\"", "-d", "a b\\c"}
	tokens, err := Split(Join(seq...))
	require.NoError(t, err)
	assert.Equal(t, seq, tokens)
}

func TestSplit_MismatchedQuotes(t *testing.T) {
	for _, input := range []string{
		"curl -H 'unterminated",
		`curl -d "open`,
		`curl trailing\`,
	} {
		tokens, err := Split(input)
		assert.Nil(t, tokens, input)
		require.Error(t, err, input)
		assert.True(t, errors.Is(err, ErrMismatchedQuotes), input)

		var mq *MismatchedQuotesError
		assert.True(t, errors.As(err, &mq), input)
	}
}
