package taxid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckDigit(t *testing.T) {
	cases := map[string]byte{
		"800197268": '4',
		"890903938": '8',
		"860002964": '4',
	}
	for base, want := range cases {
		got, err := CheckDigit(base)
		require.NoError(t, err)
		assert.Equal(t, want, got, base)
	}
}

func TestNormalize_FormatosAceptados(t *testing.T) {
	for _, in := range []string{"800.197.268-4", "8001972684", "800197268 - 4"} {
		got, err := Normalize(in)
		require.NoError(t, err, in)
		assert.Equal(t, "800197268-4", got)
	}
}

func TestNormalize_DigitoIncorrecto(t *testing.T) {
	_, err := Normalize("800197268-5")
	assert.Error(t, err)

	_, err = Normalize("123")
	assert.Error(t, err)
}
