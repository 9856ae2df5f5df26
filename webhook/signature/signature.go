package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Standard Webhooks headers
const (
	HeaderID        = "webhook-id"
	HeaderTimestamp = "webhook-timestamp"
	HeaderSignature = "webhook-signature"

	Version = "v1"

	// DefaultTolerance is how far a message timestamp may drift from now
	DefaultTolerance = 5 * time.Minute
)

var (
	ErrMissingHeaders      = errors.New("missing webhook headers")
	ErrTimestampOutOfRange = errors.New("webhook timestamp outside tolerance")
	ErrNoMatchingSignature = errors.New("no matching webhook signature")
)

// Signature is one "v1,<base64>" entry of the signature header
type Signature struct {
	Version string
	Value   string
}

func (s Signature) String() string {
	return s.Version + "," + s.Value
}

/* Sign computes the v1 signature of msgID.timestamp.body
 * msgID must not contain a full stop, it would make the content ambiguous
 */
func Sign(secret Secret, msgID string, ts time.Time, body []byte) (Signature, error) {
	if msgID == "" || strings.Contains(msgID, ".") {
		return Signature{}, fmt.Errorf("invalid message id %q", msgID)
	}
	return Signature{Version: Version, Value: base64.StdEncoding.EncodeToString(digest(secret, msgID, ts.Unix(), body))}, nil
}

func digest(secret Secret, msgID string, unix int64, body []byte) []byte {
	mac := hmac.New(sha256.New, secret.Bytes())
	mac.Write([]byte(msgID))
	mac.Write([]byte{'.'})
	mac.Write([]byte(strconv.FormatInt(unix, 10)))
	mac.Write([]byte{'.'})
	mac.Write(body)
	return mac.Sum(nil)
}

// ParseHeader splits a space delimited signature header, unknown versions are skipped
func ParseHeader(header string) ([]Signature, error) {
	var out []Signature
	for _, part := range strings.Fields(header) {
		version, value, ok := strings.Cut(part, ",")
		if !ok || value == "" {
			return nil, fmt.Errorf("malformed signature %q", part)
		}
		if version != Version {
			continue
		}
		out = append(out, Signature{Version: version, Value: value})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no %s signature in header", Version)
	}
	return out, nil
}

// Header joins signatures into a header value
func Header(sigs ...Signature) string {
	parts := make([]string, len(sigs))
	for i, s := range sigs {
		parts[i] = s.String()
	}
	return strings.Join(parts, " ")
}

/* Verify checks that any signature matches under any of the secrets
 * Comparison is constant time, several secrets allow rotation
 */
func Verify(secrets []Secret, msgID string, ts time.Time, body []byte, sigs []Signature) error {
	for _, sig := range sigs {
		want, err := base64.StdEncoding.DecodeString(sig.Value)
		if err != nil {
			continue
		}
		for _, secret := range secrets {
			if hmac.Equal(want, digest(secret, msgID, ts.Unix(), body)) {
				return nil
			}
		}
	}
	return ErrNoMatchingSignature
}

// SetHeaders signs body and writes the three Standard Webhooks headers
func SetHeaders(h http.Header, secret Secret, msgID string, ts time.Time, body []byte) error {
	sig, err := Sign(secret, msgID, ts, body)
	if err != nil {
		return err
	}
	h.Set(HeaderID, msgID)
	h.Set(HeaderTimestamp, strconv.FormatInt(ts.Unix(), 10))
	h.Set(HeaderSignature, sig.String())
	return nil
}

// VerifyHeaders validates an inbound message against its headers
func VerifyHeaders(h http.Header, body []byte, now time.Time, tolerance time.Duration, secrets ...Secret) error {
	msgID, tsRaw, sigRaw := h.Get(HeaderID), h.Get(HeaderTimestamp), h.Get(HeaderSignature)
	if msgID == "" || tsRaw == "" || sigRaw == "" {
		return ErrMissingHeaders
	}
	unix, err := strconv.ParseInt(tsRaw, 10, 64)
	if err != nil {
		return fmt.Errorf("parsing webhook timestamp: %w", err)
	}
	ts := time.Unix(unix, 0)
	if tolerance > 0 && (ts.Before(now.Add(-tolerance)) || ts.After(now.Add(tolerance))) {
		return ErrTimestampOutOfRange
	}
	sigs, err := ParseHeader(sigRaw)
	if err != nil {
		return err
	}
	return Verify(secrets, msgID, ts, body, sigs)
}
