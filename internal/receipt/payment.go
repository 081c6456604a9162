package receipt

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// PaymentInfo is the card data the checkout gateway forwards. It is never
// validated here and never persisted as-is.
type PaymentInfo struct {
	CardNumber string `json:"cardNumber"`
	ExpiryDate string `json:"expiryDate"`
	CVV        string `json:"cvv"`
}

// PaymentDigest is the opaque payment reference stored on the receipt. It
// identifies the card for support and reconciliation without holding the PAN
// or the CVV.
type PaymentDigest struct {
	Last4       string `json:"last4,omitempty"`
	Expiry      string `json:"expiry,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

// Digester turns PaymentInfo into a PaymentDigest. The fingerprint is an
// HMAC-SHA256 of the card number under key, so equal cards produce equal
// fingerprints without the number being recoverable.
type Digester struct {
	key []byte
}

// NewDigester returns a Digester. An empty key still produces a fingerprint,
// but one that anybody holding the card number can recompute.
func NewDigester(key string) *Digester {
	return &Digester{key: []byte(key)}
}

// Digest returns nil when p is nil or carries no usable fields. The CVV is
// discarded.
func (d *Digester) Digest(p *PaymentInfo) *PaymentDigest {
	if p == nil {
		return nil
	}

	number := strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, p.CardNumber)

	digest := &PaymentDigest{Expiry: strings.TrimSpace(p.ExpiryDate)}
	if number != "" {
		digest.Last4 = number[max(0, len(number)-4):]

		mac := hmac.New(sha256.New, d.key)
		mac.Write([]byte(number))
		digest.Fingerprint = hex.EncodeToString(mac.Sum(nil))
	}

	if *digest == (PaymentDigest{}) {
		return nil
	}
	return digest
}
