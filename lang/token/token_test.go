package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenString(t *testing.T) {
	for tok := Token(0); tok < maxToken; tok++ {
		if tok.String() == "" {
			t.Errorf("missing string representation of token %d", tok)
		}
	}
}

func TestTokenGoString(t *testing.T) {
	require.Equal(t, "'+'", PLUS.GoString())
	require.Equal(t, "'}'", RBRACE.GoString())
	require.Equal(t, "if", IF.GoString())
	require.Equal(t, "identifier", IDENT.GoString())
}

func TestIsKeyword(t *testing.T) {
	for tok := Token(0); tok < maxToken; tok++ {
		expect := tok >= INT && tok <= MUST
		require.Equal(t, expect, tok.IsKeyword(), tok.String())
	}
}

func TestIsLiteral(t *testing.T) {
	for tok := Token(0); tok < maxToken; tok++ {
		expect := tok >= IDENT && tok <= INTERP_PATH
		require.Equal(t, expect, tok.IsLiteral(), tok.String())
	}
}

func TestKeywordsTable(t *testing.T) {
	for lit, tok := range Keywords {
		require.True(t, tok.IsKeyword())
		require.Equal(t, lit, tok.String())
	}
	// every keyword token must be present in the table
	for tok := INT; tok <= MUST; tok++ {
		_, ok := Keywords[tok.String()]
		require.True(t, ok, tok.String())
	}
}
