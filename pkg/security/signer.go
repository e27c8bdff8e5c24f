package security

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"renolead-backend/pkg/models"
)

const (
	// Signatures older than this are rejected outright.
	maxSignatureAge = 5 * time.Minute
	// Allowance for client clocks running ahead of the server.
	maxClockSkew = time.Minute
)

var (
	ErrExpired         = errors.New("request expired")
	ErrFutureTimestamp = errors.New("request timestamp in future")
	ErrBadSignature    = errors.New("invalid signature")
)

// Signer computes and verifies HMAC-SHA256 signatures over submission
// envelopes. The secret is server-held and never transmitted.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// canonicalJSON must produce the exact bytes the browser's JSON.stringify
// emits for the envelope: fixed field order, no whitespace, no HTML escaping.
func canonicalJSON(env models.SignedEnvelope) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(env); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Sign returns the hex-encoded HMAC-SHA256 digest of the envelope.
func (s *Signer) Sign(env models.SignedEnvelope) (string, error) {
	payload, err := canonicalJSON(env)
	if err != nil {
		return "", fmt.Errorf("encoding envelope: %w", err)
	}
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// Verify checks envelope freshness, then recomputes the digest and compares
// in constant time. Internal failures surface as ErrBadSignature rather than
// propagating.
func (s *Signer) Verify(env models.SignedEnvelope, signature string, now time.Time) error {
	ts := time.UnixMilli(env.Timestamp)
	if now.Sub(ts) > maxSignatureAge {
		return ErrExpired
	}
	if ts.After(now.Add(maxClockSkew)) {
		return ErrFutureTimestamp
	}

	expected, err := s.Sign(env)
	if err != nil {
		return ErrBadSignature
	}
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return ErrBadSignature
	}
	return nil
}
