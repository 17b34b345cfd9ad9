package license

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/information-sharing-networks/license-server/internal/crypto"
)

// TrialPrefix marks legacy trial payloads ("TRIAL:<expiry>")
const TrialPrefix = "TRIAL:"

// TimestampLayout is the ISO-8601 layout used for expDate and issuedAt (UTC, millisecond precision).
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Record is the structured license payload.
//
// The field set is fixed: canonicalization sorts the JSON member names so the signed bytes
// do not depend on declaration order.
type Record struct {
	// Version is always StructuredVersion
	Version int `json:"v"`

	IsTrial bool `json:"isTrial"`

	// LicenseKey is the marketplace license key (purchases only)
	LicenseKey string `json:"licenseKey,omitempty"`

	ProductID string `json:"productId,omitempty"`

	// ExpDate is the expiry of a trial license
	ExpDate string `json:"expDate,omitempty"`

	IssuedAt  string `json:"issuedAt,omitempty"`
	LicenseID string `json:"licenseId,omitempty"`
}

// Payload is the information certified by a license. It is either a legacy string or a structured Record.
type Payload struct {
	Scheme Scheme

	// Key is the signed string of a legacy payload
	Key string

	// Record is set for structured payloads
	Record *Record
}

// LegacyPayload returns a payload that signs s as-is.
func LegacyPayload(s string) Payload {
	return Payload{Scheme: SchemeLegacy, Key: s}
}

// StructuredPayload returns a payload for a Record. The record version is set to StructuredVersion.
func StructuredPayload(r Record) Payload {
	r.Version = StructuredVersion
	return Payload{Scheme: SchemeStructured, Record: &r}
}

// NewPurchasePayload builds the payload certifying a verified purchase.
// Legacy payloads are the license key itself. Structured payloads also carry the product id,
// the issue time and a unique license id.
func NewPurchasePayload(scheme Scheme, licenseKey, productID string, issuedAt time.Time) Payload {
	if scheme == SchemeLegacy {
		return LegacyPayload(licenseKey)
	}
	return StructuredPayload(Record{
		IsTrial:    false,
		LicenseKey: licenseKey,
		ProductID:  productID,
		IssuedAt:   FormatTimestamp(issuedAt),
		LicenseID:  uuid.NewString(),
	})
}

// IsTrial reports whether the payload certifies a trial.
func (p Payload) IsTrial() bool {
	if p.Scheme == SchemeStructured {
		return p.Record != nil && p.Record.IsTrial
	}
	return strings.HasPrefix(p.Key, TrialPrefix)
}

// Canonical returns the exact string that is signed.
// Legacy payloads are returned unchanged, structured payloads are serialized per RFC 8785.
func (p Payload) Canonical() (string, error) {
	switch p.Scheme {
	case SchemeLegacy:
		return p.Key, nil
	case SchemeStructured:
		if p.Record == nil {
			return "", NewInvalidPayloadError("structured payload has no record")
		}
		canonical, err := crypto.CanonicalizeValue(p.Record)
		if err != nil {
			return "", WrapInvalidPayloadError(err, "failed to canonicalize record")
		}
		return string(canonical), nil
	default:
		return "", NewInvalidPayloadError("unknown payload scheme " + string(p.Scheme))
	}
}

// CanonicalizeRecord canonicalizes a dynamic record.
// The result only depends on the field names and values, not on the order they were added to the map.
func CanonicalizeRecord(record map[string]any) (string, error) {
	canonical, err := crypto.CanonicalizeValue(record)
	if err != nil {
		return "", WrapInvalidPayloadError(err, "failed to canonicalize record")
	}
	return string(canonical), nil
}

// ParsePayload interprets signed data.
// Data holding a canonical version 2 record is a structured payload, anything else is a legacy string.
func ParsePayload(data string) (Payload, error) {
	if !strings.HasPrefix(data, "{") {
		return LegacyPayload(data), nil
	}

	var record Record
	dec := json.NewDecoder(strings.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&record); err != nil || record.Version != StructuredVersion {
		// signed JSON that is not a license record (e.g. an early marketplace response payload)
		return LegacyPayload(data), nil
	}

	canonical, err := crypto.CanonicalizeJSON([]byte(data))
	if err != nil {
		return Payload{}, WrapInvalidPayloadError(err, "failed to canonicalize record")
	}
	if !bytes.Equal(canonical, []byte(data)) {
		return Payload{}, NewInvalidPayloadError("structured payload is not in canonical form")
	}

	return Payload{Scheme: SchemeStructured, Record: &record}, nil
}

// FormatTimestamp formats t as an ISO-8601 UTC timestamp with millisecond precision.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp parses a timestamp written by FormatTimestamp. RFC 3339 timestamps are also accepted.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(TimestampLayout, s)
	if err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
