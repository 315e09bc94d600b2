package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xonix-directory/internal/config"
	"github.com/xonix-directory/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

func TestPlaintextCredentials(t *testing.T) {
	c := NewCredentials(&config.AuthConfig{})

	stored, err := c.Hash("pa55word!")
	require.NoError(t, err)
	assert.Equal(t, "pa55word!", stored)
	assert.True(t, c.Verify(stored, "pa55word!"))
	assert.False(t, c.Verify(stored, "Pa55word!"))
}

func TestBcryptCredentials(t *testing.T) {
	c := NewCredentials(&config.AuthConfig{HashPasswords: true, BcryptCost: bcrypt.MinCost})

	stored, err := c.Hash("pa55word!")
	require.NoError(t, err)
	assert.NotEqual(t, "pa55word!", stored)
	assert.True(t, c.Verify(stored, "pa55word!"))
	assert.False(t, c.Verify(stored, "wrong"))

	// legacy plaintext records keep working
	assert.True(t, c.Verify("old-secret1", "old-secret1"))
}

func TestNormalizeUsername(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"alice", "alice", false},
		{"alice   ", "alice", false},
		{"al ice", "", true},
		{"   ", "", true},
		{"", "", true},
		{"tab\tname", "", true},
	}
	for _, tt := range tests {
		got, err := NormalizeUsername(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, domain.ErrInvalidUsername, tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestCheckPasswordStrength(t *testing.T) {
	tests := []struct {
		password string
		ok       bool
	}{
		{"abc123!x", true},
		{"abc123!xyzabc12", true},
		{"abc123!xyzabc123", false}, // 16 chars
		{"ab1!", false},
		{"abcdefgh1", false}, // no special
		{"abcdefg!!", false}, // no digit
		{"1234567!!", false}, // no letter
		{"abc 123!x", false},
		{"Abcdef1!      ", false}, // trailing spaces are part of the password
		{"abc123!x\n", false},
	}
	for _, tt := range tests {
		err := CheckPasswordStrength(tt.password, 8, 15)
		if tt.ok {
			assert.NoError(t, err, tt.password)
		} else {
			assert.ErrorIs(t, err, domain.ErrWeakPassword, tt.password)
		}
	}
}
