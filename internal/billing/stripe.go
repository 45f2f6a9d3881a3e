// Package billing turns Stripe checkout webhooks into Pro upgrades.
package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	SignatureHeader           = "Stripe-Signature"
	EventCheckoutCompleted    = "checkout.session.completed"
	defaultSignatureTolerance = 5 * time.Minute
)

var (
	ErrInvalidSignature = errors.New("invalid_signature")
	ErrInvalidPayload   = errors.New("invalid_payload")
	ErrEventIgnored     = errors.New("event_ignored")
	ErrNotConfigured    = errors.New("stripe_webhook_not_configured")
)

// Verifier checks Stripe-Signature headers (t=<unix>,v1=<hex hmac>).
type Verifier struct {
	secret    string
	tolerance time.Duration
	now       func() time.Time
}

func NewVerifier(secret string, now func() time.Time) *Verifier {
	return &Verifier{
		secret:    strings.TrimSpace(secret),
		tolerance: defaultSignatureTolerance,
		now:       now,
	}
}

func (v *Verifier) Verify(payload []byte, headers http.Header) error {
	if v.secret == "" {
		return ErrNotConfigured
	}
	sigHeader := strings.TrimSpace(headers.Get(SignatureHeader))
	if sigHeader == "" {
		return ErrInvalidSignature
	}

	timestamp, signatures, err := parseStripeSignature(sigHeader)
	if err != nil {
		return ErrInvalidSignature
	}
	unix, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}
	if age := v.now().Sub(time.Unix(unix, 0)); age > v.tolerance || age < -v.tolerance {
		return ErrInvalidSignature
	}

	expected := sign(v.secret, timestamp, payload)
	for _, signature := range signatures {
		if hmac.Equal([]byte(signature), []byte(expected)) {
			return nil
		}
	}
	return ErrInvalidSignature
}

func sign(secret, timestamp string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(fmt.Sprintf("%s.%s", timestamp, string(payload))))
	return hex.EncodeToString(mac.Sum(nil))
}

func parseStripeSignature(header string) (string, []string, error) {
	var timestamp string
	signatures := []string{}
	for _, part := range strings.Split(header, ",") {
		keyValue := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(keyValue) != 2 {
			continue
		}
		key := strings.TrimSpace(keyValue[0])
		value := strings.TrimSpace(keyValue[1])
		switch key {
		case "t":
			timestamp = value
		case "v1":
			signatures = append(signatures, value)
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return "", nil, ErrInvalidSignature
	}
	return timestamp, signatures, nil
}

type stripeEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

type checkoutSession struct {
	ID       string            `json:"id"`
	Customer string            `json:"customer"`
	Metadata map[string]string `json:"metadata"`
}

// CheckoutCompleted is the part of a completed checkout fornet acts on.
type CheckoutCompleted struct {
	EventID    string
	UserID     string
	CustomerID string
}

// ParseCheckoutCompleted returns ErrEventIgnored for other event types and
// for sessions without a userId in their metadata.
func ParseCheckoutCompleted(payload []byte) (*CheckoutCompleted, error) {
	var event stripeEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, ErrInvalidPayload
	}
	if strings.TrimSpace(event.ID) == "" {
		return nil, ErrInvalidPayload
	}
	if strings.TrimSpace(event.Type) != EventCheckoutCompleted {
		return nil, ErrEventIgnored
	}

	var session checkoutSession
	if err := json.Unmarshal(event.Data.Object, &session); err != nil {
		return nil, ErrInvalidPayload
	}
	userID := strings.TrimSpace(session.Metadata["userId"])
	if userID == "" {
		return nil, ErrEventIgnored
	}
	return &CheckoutCompleted{
		EventID:    event.ID,
		UserID:     userID,
		CustomerID: strings.TrimSpace(session.Customer),
	}, nil
}
