// Package auth implements the access guard that every non-asset request passes through.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"strings"

	"scanreceiver/internal/config"
)

var (
	// ErrAuthMissing: no Authorization header, or fewer than two tokens in it.
	ErrAuthMissing = errors.New("missing authorization header")
	// ErrAuthMisconfigured: the server has no credential to compare against.
	ErrAuthMisconfigured = errors.New("server credential not configured")
	// ErrAuthInvalid: the presented token does not match the credential.
	ErrAuthInvalid = errors.New("invalid token")
)

// Guard checks presented bearer tokens against one configured credential.
// It holds no mutable state and is safe for concurrent use.
type Guard struct {
	digest [sha256.Size]byte
	set    bool
}

// NewGuard builds a Guard for cred. An unconfigured cred yields a Guard that
// rejects every well-formed request with ErrAuthMisconfigured.
func NewGuard(cred config.Credential) *Guard {
	g := &Guard{set: cred.IsSet()}
	if g.set {
		g.digest = sha256.Sum256([]byte(cred.Value()))
	}
	return g
}

// Configured reports whether the guard has a credential.
func (g *Guard) Configured() bool { return g.set }

// Check authorizes the raw Authorization header value. The checks run in a fixed order:
// header shape, then server configuration, then the token itself.
func (g *Guard) Check(header string) error {
	token, ok := ExtractToken(header)
	if !ok {
		return ErrAuthMissing
	}
	if !g.set {
		return ErrAuthMisconfigured
	}
	// Hashing first makes the comparison length-independent.
	presented := sha256.Sum256([]byte(token))
	if subtle.ConstantTimeCompare(presented[:], g.digest[:]) != 1 {
		return ErrAuthInvalid
	}
	return nil
}

// ExtractToken returns the second whitespace-separated field of header ("Scheme token").
// The scheme itself is not interpreted.
func ExtractToken(header string) (string, bool) {
	fields := strings.Fields(header)
	if len(fields) < 2 {
		return "", false
	}
	return fields[1], true
}
