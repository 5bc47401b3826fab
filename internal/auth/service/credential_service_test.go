package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialService(t *testing.T) {
	svc, err := NewCredentialService()
	require.NoError(t, err)

	t.Run("Success_HashAndCompare", func(t *testing.T) {
		hashed, err := svc.HashPassword("correct horse battery staple")

		require.NoError(t, err)
		assert.NotEmpty(t, hashed)
		assert.NotEqual(t, "correct horse battery staple", hashed)
		assert.True(t, svc.ComparePassword("correct horse battery staple", hashed))
	})

	t.Run("Success_WrongPasswordDoesNotMatch", func(t *testing.T) {
		hashed, err := svc.HashPassword("correct horse battery staple")
		require.NoError(t, err)

		assert.False(t, svc.ComparePassword("wrong password", hashed))
	})

	t.Run("Success_GarbageHashReadsAsMismatch", func(t *testing.T) {
		assert.False(t, svc.ComparePassword("any password", "not-an-argon2id-hash"))
	})

	t.Run("Success_HashesAreSalted", func(t *testing.T) {
		first, err := svc.HashPassword("same password")
		require.NoError(t, err)
		second, err := svc.HashPassword("same password")
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})
}
