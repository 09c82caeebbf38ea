package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cesium-lang/cesium/internal/diagnostics"
	"github.com/cesium-lang/cesium/internal/token"
)

func tokenize(t *testing.T, src string) []token.Token {
	t.Helper()
	toks, err := New(src).Tokenize()
	require.NoError(t, err)
	return toks
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	toks := tokenize(t, "int x Stream reactive reactiveValue")

	want := []token.Kind{
		token.Keyword, token.Identifier, token.Keyword, token.Keyword,
		token.Identifier, token.EOF,
	}
	require.Len(t, toks, len(want))
	for i, k := range want {
		assert.Equalf(t, k, toks[i].Kind, "token %d (%q)", i, toks[i].Lexeme)
	}
}

func TestBooleanLiteralsAreNotKeywords(t *testing.T) {
	toks := tokenize(t, "true false")
	assert.Equal(t, token.BooleanLiteral, toks[0].Kind)
	assert.Equal(t, token.BooleanLiteral, toks[1].Kind)
}

func TestNumericLiterals(t *testing.T) {
	toks := tokenize(t, "42 3.14 0")
	assert.Equal(t, "42", toks[0].Lexeme)
	assert.Equal(t, "3.14", toks[1].Lexeme)
	assert.Equal(t, "0", toks[2].Lexeme)
	for _, tok := range toks[:3] {
		assert.Equal(t, token.NumericLiteral, tok.Kind)
	}
}

func TestTrailingDotIsLexicalError(t *testing.T) {
	_, err := New("1.").Tokenize()
	require.Error(t, err)
	var lexErr *diagnostics.LexicalError
	require.ErrorAs(t, err, &lexErr)
	assert.Contains(t, lexErr.Message, "ending with a dot")
}

func TestMultipleDotsIsLexicalError(t *testing.T) {
	_, err := New("1.2.3").Tokenize()
	require.Error(t, err)
	var lexErr *diagnostics.LexicalError
	require.ErrorAs(t, err, &lexErr)
	assert.Contains(t, lexErr.Message, "multiple dots")
}

func TestUnterminatedStringIsLexicalError(t *testing.T) {
	_, err := New(`"abc`).Tokenize()
	require.Error(t, err)
	var lexErr *diagnostics.LexicalError
	require.ErrorAs(t, err, &lexErr)
}

func TestSingleQuoteIsUnrecognized(t *testing.T) {
	_, err := New(`'abc'`).Tokenize()
	require.Error(t, err)
}

func TestMultiCharOperators(t *testing.T) {
	toks := tokenize(t, "== != <= >= && ||")
	for _, tok := range toks[:6] {
		assert.Equal(t, token.Operator, tok.Kind)
	}
	lexemes := []string{"==", "!=", "<=", ">=", "&&", "||"}
	for i, want := range lexemes {
		assert.Equal(t, want, toks[i].Lexeme)
	}
}

func TestUnknownPairingEmitsTwoSingleCharTokens(t *testing.T) {
	toks := tokenize(t, "=- +=")
	assert.Equal(t, []string{"=", "-", "+", "="}, []string{
		toks[0].Lexeme, toks[1].Lexeme, toks[2].Lexeme, toks[3].Lexeme,
	})
}

func TestLineComment(t *testing.T) {
	toks := tokenize(t, "int x; // trailing\nint y;")
	var kinds []token.Kind
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	require.Len(t, toks, 7) // int x ; int y ; EOF
	assert.Equal(t, 2, toks[4].Line)
}

func TestBlockComment(t *testing.T) {
	toks := tokenize(t, "int /* comment\nspanning lines */ x;")
	assert.Equal(t, "int", toks[0].Lexeme)
	assert.Equal(t, "x", toks[1].Lexeme)
	assert.Equal(t, 2, toks[1].Line)
}

func TestUnterminatedBlockCommentIsTreatedAsTerminated(t *testing.T) {
	toks, err := New("int x; /* never closed").Tokenize()
	require.NoError(t, err)
	assert.Equal(t, token.EOF, toks[len(toks)-1].Kind)
}

func TestStringLiteral(t *testing.T) {
	toks := tokenize(t, `"hello world"`)
	assert.Equal(t, token.StringLiteral, toks[0].Kind)
	assert.Equal(t, "hello world", toks[0].Lexeme)
}

func TestDelimiters(t *testing.T) {
	toks := tokenize(t, "( ) [ ] { } ; , .")
	for _, tok := range toks[:9] {
		assert.Equal(t, token.Delimiter, tok.Kind)
	}
}
