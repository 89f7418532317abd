package cloudinary

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/tendant/hatchery/pkg/hatchery"
)

// Credential authorizes exactly one upload. It is built per call and never
// reused.
type Credential struct {
	PublicID  string
	Timestamp string // Unix seconds, decimal
	Signature string // lowercase hex
	APIKey    string
}

// Sign returns the lowercase hex SHA-1 digest of
// "public_id=<publicID>&timestamp=<timestamp><secret>". The field order and
// separators are fixed by the asset host; the secret is appended raw.
func Sign(publicID, timestamp, secret string) string {
	sum := sha1.Sum([]byte("public_id=" + publicID + "&timestamp=" + timestamp + secret))
	return hex.EncodeToString(sum[:])
}

// Signer builds upload credentials from an API key pair and a clock
type Signer struct {
	apiKey    string
	apiSecret string
	now       func() time.Time
}

// NewSigner creates a Signer. A nil now defaults to time.Now.
func NewSigner(apiKey, apiSecret string, now func() time.Time) *Signer {
	if now == nil {
		now = time.Now
	}
	return &Signer{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		now:       now,
	}
}

// Credential signs an upload of publicID at the current time. A clock reading
// before the Unix epoch fails with hatchery.ErrTimeSource.
func (s *Signer) Credential(publicID string) (Credential, error) {
	now := s.now()
	if now.Before(time.Unix(0, 0)) {
		return Credential{}, fmt.Errorf("%w: clock reads %s", hatchery.ErrTimeSource, now.Format(time.RFC3339))
	}

	timestamp := strconv.FormatInt(now.Unix(), 10)
	return Credential{
		PublicID:  publicID,
		Timestamp: timestamp,
		Signature: Sign(publicID, timestamp, s.apiSecret),
		APIKey:    s.apiKey,
	}, nil
}
