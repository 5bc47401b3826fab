package service

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/secrets"

	"github.com/allisson/authgate/internal/config"
)

func TestLoadSigningKey(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_FromBase64Secret", func(t *testing.T) {
		cfg := &config.Config{
			JWTSigningSecret: base64.StdEncoding.EncodeToString([]byte("shared secret material")),
		}

		key, err := LoadSigningKey(ctx, cfg)

		require.NoError(t, err)
		assert.Len(t, key, 32)
	})

	t.Run("Success_DerivationIsDeterministic", func(t *testing.T) {
		cfg := &config.Config{
			JWTSigningSecret: base64.StdEncoding.EncodeToString([]byte("shared secret material")),
		}

		first, err := LoadSigningKey(ctx, cfg)
		require.NoError(t, err)
		second, err := LoadSigningKey(ctx, cfg)
		require.NoError(t, err)

		// Issuer and gateway must derive the identical key from the same config.
		assert.Equal(t, first, second)
	})

	t.Run("Success_DifferentSecretsDeriveDifferentKeys", func(t *testing.T) {
		first, err := LoadSigningKey(ctx, &config.Config{
			JWTSigningSecret: base64.StdEncoding.EncodeToString([]byte("secret one")),
		})
		require.NoError(t, err)

		second, err := LoadSigningKey(ctx, &config.Config{
			JWTSigningSecret: base64.StdEncoding.EncodeToString([]byte("secret two")),
		})
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})

	t.Run("Success_FromKMSKeeper", func(t *testing.T) {
		// base64key:// is the local keeper; wrap the material with it first.
		keyURI := "base64key://smGbjm71Nxd1Ig5FS0wj9SlbzAIrnolCz9bQQ6uAhl4="
		keeper, err := secrets.OpenKeeper(ctx, keyURI)
		require.NoError(t, err)
		defer func() { _ = keeper.Close() }()

		ciphertext, err := keeper.Encrypt(ctx, []byte("wrapped signing material"))
		require.NoError(t, err)

		cfg := &config.Config{
			KMSKeyURI:              keyURI,
			JWTEncryptedSigningKey: base64.StdEncoding.EncodeToString(ciphertext),
		}

		key, err := LoadSigningKey(ctx, cfg)

		require.NoError(t, err)
		assert.Len(t, key, 32)
	})

	t.Run("Error_NoSourceConfigured", func(t *testing.T) {
		key, err := LoadSigningKey(ctx, &config.Config{})

		assert.Error(t, err)
		assert.Nil(t, key)
	})

	t.Run("Error_InvalidBase64Secret", func(t *testing.T) {
		key, err := LoadSigningKey(ctx, &config.Config{JWTSigningSecret: "%%%not-base64%%%"})

		assert.Error(t, err)
		assert.Nil(t, key)
	})

	t.Run("Error_BadKeeperURI", func(t *testing.T) {
		cfg := &config.Config{
			KMSKeyURI:              "nosuchscheme://key",
			JWTEncryptedSigningKey: base64.StdEncoding.EncodeToString([]byte("ciphertext")),
		}

		key, err := LoadSigningKey(ctx, cfg)

		assert.Error(t, err)
		assert.Nil(t, key)
	})
}
