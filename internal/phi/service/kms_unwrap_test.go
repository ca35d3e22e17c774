package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/secrets"
)

func TestUnwrapSecret(t *testing.T) {
	ctx := context.Background()
	keyURI := "base64key://" + base64.URLEncoding.EncodeToString(bytes.Repeat([]byte{0x42}, 32))

	t.Run("unwraps a wrapped secret", func(t *testing.T) {
		keeper, err := secrets.OpenKeeper(ctx, keyURI)
		require.NoError(t, err)
		defer func() { _ = keeper.Close() }()

		blob, err := keeper.Encrypt(ctx, []byte("the-real-encryption-secret"))
		require.NoError(t, err)
		wrapped := base64.StdEncoding.EncodeToString(blob)

		secret, err := UnwrapSecret(ctx, keyURI, wrapped)
		require.NoError(t, err)
		assert.Equal(t, "the-real-encryption-secret", secret)
	})

	t.Run("invalid base64 blob", func(t *testing.T) {
		_, err := UnwrapSecret(ctx, keyURI, "%%%not-base64%%%")
		assert.Error(t, err)
	})

	t.Run("invalid key URI", func(t *testing.T) {
		_, err := UnwrapSecret(ctx, "bogus://nope", "aGVsbG8=")
		assert.Error(t, err)
	})
}
