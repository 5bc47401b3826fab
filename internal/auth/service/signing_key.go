package service

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/allisson/authgate/internal/config"

	apperrors "github.com/allisson/authgate/internal/errors"

	"gocloud.dev/secrets"

	// Register KMS provider drivers for signing-key unwrap
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// LoadSigningKey resolves the raw signing material from configuration and
// expands it into a 32-byte HMAC key with HKDF-SHA256. With identical
// configuration the issuing service and the gateway derive the identical key.
//
// Two sources, checked in order:
//  1. KMS_KEY_URI + JWT_ENCRYPTED_SIGNING_KEY: the base64 ciphertext is
//     unwrapped through a gocloud.dev secrets keeper (hashivault://,
//     awskms://, gcpkms://, azurekeyvault://, base64key://).
//  2. JWT_SIGNING_SECRET: base64-encoded shared secret used directly.
func LoadSigningKey(ctx context.Context, cfg *config.Config) ([]byte, error) {
	material, err := loadKeyMaterial(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return deriveSigningKey(material)
}

func loadKeyMaterial(ctx context.Context, cfg *config.Config) ([]byte, error) {
	if cfg.KMSKeyURI != "" && cfg.JWTEncryptedSigningKey != "" {
		ciphertext, err := base64.StdEncoding.DecodeString(cfg.JWTEncryptedSigningKey)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to decode encrypted signing key")
		}

		keeper, err := secrets.OpenKeeper(ctx, cfg.KMSKeyURI)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to open KMS keeper")
		}
		defer func() { _ = keeper.Close() }()

		material, err := keeper.Decrypt(ctx, ciphertext)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to unwrap signing key")
		}
		return material, nil
	}

	if cfg.JWTSigningSecret != "" {
		material, err := base64.StdEncoding.DecodeString(cfg.JWTSigningSecret)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to decode signing secret")
		}
		return material, nil
	}

	return nil, apperrors.New("no signing key configured: set JWT_SIGNING_SECRET or KMS_KEY_URI + JWT_ENCRYPTED_SIGNING_KEY")
}

// deriveSigningKey uses HKDF-SHA256 to expand key material into a 32-byte key.
// Info parameter: "token-signing-v1" (versioned for future algorithm changes).
func deriveSigningKey(material []byte) ([]byte, error) {
	if len(material) == 0 {
		return nil, apperrors.New("signing key material is empty")
	}

	info := []byte("token-signing-v1")
	reader := hkdf.New(sha256.New, material, nil, info)

	key := make([]byte, signingKeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, apperrors.Wrap(err, "failed to derive signing key")
	}

	return key, nil
}
