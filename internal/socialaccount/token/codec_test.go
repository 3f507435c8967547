package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodecRoundTrip(t *testing.T) {
	codec, err := NewCodec("unit-test-secret")
	require.NoError(t, err)

	sealed, err := codec.Seal("EAAGlongLivedToken")
	require.NoError(t, err)
	require.NotEqual(t, "EAAGlongLivedToken", sealed)

	opened, err := codec.Open(sealed)
	require.NoError(t, err)
	require.Equal(t, "EAAGlongLivedToken", opened)
}

func TestCodecNoncesDiffer(t *testing.T) {
	codec, err := NewCodec("unit-test-secret")
	require.NoError(t, err)

	first, err := codec.Seal("same-token")
	require.NoError(t, err)
	second, err := codec.Seal("same-token")
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestCodecRejectsWrongKey(t *testing.T) {
	codec, err := NewCodec("secret-a")
	require.NoError(t, err)
	other, err := NewCodec("secret-b")
	require.NoError(t, err)

	sealed, err := codec.Seal("token")
	require.NoError(t, err)

	_, err = other.Open(sealed)
	require.ErrorIs(t, err, ErrInvalidCiphertext)
}

func TestCodecRequiresSecret(t *testing.T) {
	_, err := NewCodec("   ")
	require.ErrorIs(t, err, ErrMissingSecret)
}

func TestCodecEmptyToken(t *testing.T) {
	codec, err := NewCodec("unit-test-secret")
	require.NoError(t, err)

	sealed, err := codec.Seal("")
	require.NoError(t, err)
	require.Empty(t, sealed)

	opened, err := codec.Open("")
	require.NoError(t, err)
	require.Empty(t, opened)
}
