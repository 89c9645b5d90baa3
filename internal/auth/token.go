// Package auth issues and verifies the gateway's bearer tokens. Tokens
// are HMAC-SHA256 signed, carrying a subject and expiry, so the gateway
// needs no session storage to validate them.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)

type claims struct {
	Subject   string `json:"sub"`
	ExpiresAt int64  `json:"exp"`
	Refresh   bool   `json:"refresh,omitempty"`
}

type Signer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewSigner(secret string) *Signer {
	return &Signer{
		secret:     []byte(secret),
		accessTTL:  15 * time.Minute,
		refreshTTL: 7 * 24 * time.Hour,
		now:        time.Now,
	}
}

func (s *Signer) Access(subject string) string {
	return s.sign(claims{Subject: subject, ExpiresAt: s.now().Add(s.accessTTL).Unix()})
}

func (s *Signer) RefreshToken(subject string) string {
	return s.sign(claims{Subject: subject, ExpiresAt: s.now().Add(s.refreshTTL).Unix(), Refresh: true})
}

// Verify checks signature and expiry and returns the subject.
func (s *Signer) Verify(token string) (string, error) {
	c, err := s.parse(token)
	if err != nil {
		return "", err
	}
	return c.Subject, nil
}

// Refresh exchanges a valid refresh token for a fresh access token.
func (s *Signer) Refresh(token string) (string, error) {
	c, err := s.parse(token)
	if err != nil {
		return "", err
	}
	if !c.Refresh {
		return "", fmt.Errorf("%w: not a refresh token", ErrInvalidToken)
	}
	return s.Access(c.Subject), nil
}

func (s *Signer) sign(c claims) string {
	body, _ := json.Marshal(c)
	encoded := base64.RawURLEncoding.EncodeToString(body)
	return encoded + "." + s.mac(encoded)
}

func (s *Signer) parse(token string) (claims, error) {
	encoded, sig, ok := strings.Cut(token, ".")
	if !ok {
		return claims{}, ErrInvalidToken
	}
	if !hmac.Equal([]byte(s.mac(encoded)), []byte(sig)) {
		return claims{}, ErrInvalidToken
	}
	body, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return claims{}, ErrInvalidToken
	}
	var c claims
	if err := json.Unmarshal(body, &c); err != nil {
		return claims{}, ErrInvalidToken
	}
	if s.now().Unix() >= c.ExpiresAt {
		return claims{}, ErrExpiredToken
	}
	return c, nil
}

func (s *Signer) mac(msg string) string {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(msg))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
