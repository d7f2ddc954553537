package wayforpay

import (
	"crypto/hmac"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
)

// fieldSeparator joins signature fields; mandated by the gateway protocol.
const fieldSeparator = ";"

// Profile selects how the merchant secret is folded into the digest.
// The vendor shipped both conventions over time; the active one is fixed
// once at startup and must match the merchant account configuration.
type Profile string

const (
	// ProfileHMACMD5 keys an HMAC-MD5 with the merchant secret.
	ProfileHMACMD5 Profile = "hmac-md5"
	// ProfileSuffixMD5 hashes the joined fields with the secret appended,
	// matching older merchant integrations.
	ProfileSuffixMD5 Profile = "suffix-md5"
)

// ParseProfile validates a configured profile name.
func ParseProfile(raw string) (Profile, error) {
	switch Profile(strings.ToLower(strings.TrimSpace(raw))) {
	case ProfileHMACMD5, "":
		return ProfileHMACMD5, nil
	case ProfileSuffixMD5:
		return ProfileSuffixMD5, nil
	default:
		return "", fmt.Errorf("unknown signature profile %q", raw)
	}
}

// Signer computes and verifies gateway signatures over ordered field lists.
// Field order is vendor-mandated per payload type; callers supply fields in
// that exact order. Numeric fields must already be rendered canonically
// (see Amount) because the gateway recomputes the digest byte for byte.
type Signer struct {
	secret  []byte
	profile Profile
}

// NewSigner builds a signer for the given merchant secret and profile.
func NewSigner(secret string, profile Profile) *Signer {
	if profile == "" {
		profile = ProfileHMACMD5
	}
	return &Signer{secret: []byte(secret), profile: profile}
}

// Sign returns the lowercase hex digest over the fields joined with ";".
func (s *Signer) Sign(fields ...string) string {
	joined := strings.Join(fields, fieldSeparator)
	switch s.profile {
	case ProfileSuffixMD5:
		sum := md5.Sum(append([]byte(joined), s.secret...))
		return hex.EncodeToString(sum[:])
	default:
		mac := hmac.New(md5.New, s.secret)
		mac.Write([]byte(joined))
		return hex.EncodeToString(mac.Sum(nil))
	}
}

// Verify recomputes the digest and compares it to the provided signature.
// Malformed input never escapes as an error: an empty or mismatched
// signature simply verifies false.
func (s *Signer) Verify(provided string, fields ...string) bool {
	provided = strings.ToLower(strings.TrimSpace(provided))
	if provided == "" {
		return false
	}
	expected := s.Sign(fields...)
	return hmac.Equal([]byte(expected), []byte(provided))
}
