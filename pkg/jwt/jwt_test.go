package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateParse_IdaYVuelta(t *testing.T) {
	id := Identity{UserID: "u-1", CompanyID: "c-1", Role: "bodeguero"}
	tok, err := Generate("secreto", "bodega-api", 5, id)
	require.NoError(t, err)

	got, err := Parse("secreto", tok)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	tok, err := Generate("secreto", "bodega-api", 5, Identity{UserID: "u", CompanyID: "c"})
	require.NoError(t, err)

	_, err = Parse("otro", tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_TokenVencido(t *testing.T) {
	tok, err := Generate("secreto", "bodega-api", -1, Identity{UserID: "u", CompanyID: "c"})
	require.NoError(t, err)

	_, err = Parse("secreto", tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGenerate_SinSecret(t *testing.T) {
	_, err := Generate("", "x", 5, Identity{})
	assert.Error(t, err)
}
