package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestHasher(t *testing.T, algorithm string) *PasswordHasher {
	t.Helper()
	h, err := NewPasswordHasher(algorithm, bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func TestPasswordHasher_RoundTrip(t *testing.T) {
	passwords := []string{
		"pw123",
		"",
		"correct horse battery staple",
		"пароль-с-юникодом",
		strings.Repeat("x", MaxPasswordBytes),
	}

	for _, algorithm := range []string{AlgorithmBcrypt, AlgorithmArgon2id} {
		h := newTestHasher(t, algorithm)
		for _, pw := range passwords {
			stored, err := h.Hash(pw)
			require.NoError(t, err, "%s %q", algorithm, pw)
			assert.NotEqual(t, pw, stored)
			assert.True(t, h.Verify(pw, stored), "%s %q", algorithm, pw)
			assert.False(t, h.Verify(pw+"!", stored), "%s %q altered", algorithm, pw)
		}
	}
}

func TestPasswordHasher_Salted(t *testing.T) {
	for _, algorithm := range []string{AlgorithmBcrypt, AlgorithmArgon2id} {
		h := newTestHasher(t, algorithm)
		a, err := h.Hash("same-password")
		require.NoError(t, err)
		b, err := h.Hash("same-password")
		require.NoError(t, err)
		assert.NotEqual(t, a, b, algorithm)
	}
}

func TestPasswordHasher_RejectsLongPasswords(t *testing.T) {
	h := newTestHasher(t, AlgorithmBcrypt)

	_, err := h.Hash(strings.Repeat("a", MaxPasswordBytes+1))
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	stored, err := h.Hash(strings.Repeat("a", MaxPasswordBytes))
	require.NoError(t, err)
	assert.False(t, h.Verify(strings.Repeat("a", MaxPasswordBytes+1), stored))
}

func TestPasswordHasher_VerifyMalformedStored(t *testing.T) {
	h := newTestHasher(t, AlgorithmBcrypt)

	for _, stored := range []string{
		"",
		"plaintext",
		"$2a$broken",
		"$argon2id$",
		"$argon2id$v=19$m=65536,t=3,p=2$!!!$!!!",
		"$argon2id$v=18$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=1,t=0,p=0$c2FsdA$aGFzaA",
	} {
		assert.False(t, h.Verify("pw", stored), "stored=%q", stored)
	}
}

func TestPasswordHasher_VerifiesAcrossAlgorithms(t *testing.T) {
	bc := newTestHasher(t, AlgorithmBcrypt)
	ar := newTestHasher(t, AlgorithmArgon2id)

	fromArgon, err := ar.Hash("pw123")
	require.NoError(t, err)
	fromBcrypt, err := bc.Hash("pw123")
	require.NoError(t, err)

	assert.True(t, bc.Verify("pw123", fromArgon))
	assert.True(t, ar.Verify("pw123", fromBcrypt))
}

func TestNewPasswordHasher_UnknownAlgorithm(t *testing.T) {
	_, err := NewPasswordHasher("sha256", 10)
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func TestPasswordHasher_VerifyAbsentDoesMatchingWork(t *testing.T) {
	for _, algorithm := range []string{AlgorithmBcrypt, AlgorithmArgon2id} {
		t.Run(algorithm, func(t *testing.T) {
			h := newTestHasher(t, algorithm)

			assert.False(t, h.VerifyAbsent(dummyPassword))
			assert.False(t, h.VerifyAbsent("anything"))

			require.NotEmpty(t, h.dummy)
			assert.True(t, h.Verify(dummyPassword, h.dummy))
			if algorithm == AlgorithmBcrypt {
				cost, err := bcrypt.Cost([]byte(h.dummy))
				require.NoError(t, err)
				assert.Equal(t, h.bcryptCost, cost)
			} else {
				assert.True(t, strings.HasPrefix(h.dummy, "$argon2id$"))
			}
		})
	}
}
