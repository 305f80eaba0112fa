package cryptox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestGenerateToken(t *testing.T) {
	plain1, digest1, err := GenerateToken()
	require.NoError(t, err)
	plain2, digest2, err := GenerateToken()
	require.NoError(t, err)

	assert.Len(t, plain1, TokenBytes*2)
	assert.Len(t, digest1, 64)
	assert.NotEqual(t, plain1, plain2)
	assert.NotEqual(t, digest1, digest2)
	assert.NotEqual(t, plain1, digest1)
	assert.Equal(t, digest1, DigestToken(plain1))
}

func TestDigestToken_KnownValue(t *testing.T) {
	// sha256("abc")
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", DigestToken("abc"))
	assert.Equal(t, DigestToken("abc"), DigestToken("  abc\n"))
}

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("Secr3t!pass", bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, ComparePassword(hash, "Secr3t!pass"))
	assert.False(t, ComparePassword(hash, "secr3t!pass"))
	assert.False(t, ComparePassword("", "Secr3t!pass"))
}

func TestHashPassword_DefaultCost(t *testing.T) {
	hash, err := HashPassword("Secr3t!pass", 0)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, DefaultCost, cost)
}

func TestCheckPasswordStrength(t *testing.T) {
	tests := []struct {
		password string
		ok       bool
	}{
		{"Str0ng!pw", true},
		{"S0!a", false},
		{"alllower1!", false},
		{"ALLUPPER1!", false},
		{"NoDigits!!", false},
		{"NoSpecial12", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			err := CheckPasswordStrength(tt.password)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrWeakPassword)
			}
		})
	}
}
