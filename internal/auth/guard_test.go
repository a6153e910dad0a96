package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"scanreceiver/internal/config"
)

func TestExtractToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"", "", false},
		{"Bearer", "", false},
		{"   ", "", false},
		{"Bearer abc", "abc", true},
		{"Token   abc  extra", "abc", true},
		{"\tBearer\tabc", "abc", true},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			token, ok := ExtractToken(tt.header)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.token, token)
		})
	}
}

func TestGuard_Check(t *testing.T) {
	tests := []struct {
		name   string
		cred   config.Credential
		header string
		want   error
	}{
		{"missing header", config.NewCredential("secret"), "", ErrAuthMissing},
		{"single token header", config.NewCredential("secret"), "secret", ErrAuthMissing},
		{"missing header beats misconfiguration", config.Credential{}, "", ErrAuthMissing},
		{"unconfigured", config.Credential{}, "Bearer secret", ErrAuthMisconfigured},
		{"unconfigured from empty env", config.NewCredential(""), "Bearer anything", ErrAuthMisconfigured},
		{"wrong token", config.NewCredential("secret"), "Bearer secreT", ErrAuthInvalid},
		{"prefix of token", config.NewCredential("secret"), "Bearer secre", ErrAuthInvalid},
		{"token with suffix", config.NewCredential("secret"), "Bearer secret1", ErrAuthInvalid},
		{"valid", config.NewCredential("secret"), "Bearer secret", nil},
		{"any scheme", config.NewCredential("secret"), "Token secret", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewGuard(tt.cred).Check(tt.header)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGuard_IndependentCredentials(t *testing.T) {
	a := NewGuard(config.NewCredential("alpha"))
	b := NewGuard(config.NewCredential("beta"))

	assert.NoError(t, a.Check("Bearer alpha"))
	assert.ErrorIs(t, a.Check("Bearer beta"), ErrAuthInvalid)
	assert.NoError(t, b.Check("Bearer beta"))
	assert.ErrorIs(t, b.Check("Bearer alpha"), ErrAuthInvalid)
	assert.True(t, a.Configured())
	assert.False(t, NewGuard(config.Credential{}).Configured())
}
