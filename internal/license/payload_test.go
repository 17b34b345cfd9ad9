package license

import (
	"strings"
	"testing"
	"time"
)

func TestCanonicalLegacyPayloadIsIdentity(t *testing.T) {
	for _, key := range []string{"ABC-123", "TRIAL:2026-01-15T00:00:00.000Z", "key|with|pipes", " spaced "} {
		got, err := LegacyPayload(key).Canonical()
		if err != nil {
			t.Fatalf("Canonical() error = %v", err)
		}
		if got != key {
			t.Errorf("Canonical() = %q, want %q", got, key)
		}
	}
}

func TestCanonicalizationIsDeterministic(t *testing.T) {
	record := Record{
		IsTrial:   true,
		ProductID: "pro",
		ExpDate:   "2026-01-15T00:00:00.000Z",
		IssuedAt:  "2026-01-01T00:00:00.000Z",
		LicenseID: "5b0f6d0e-8a4c-4d8e-9b0a-2f1c3d4e5f60",
	}

	first, err := StructuredPayload(record).Canonical()
	if err != nil {
		t.Fatalf("Canonical() error = %v", err)
	}
	second, err := StructuredPayload(record).Canonical()
	if err != nil {
		t.Fatalf("Canonical() error = %v", err)
	}
	if first != second {
		t.Errorf("canonical form changed between calls:\n%s\n%s", first, second)
	}

	want := `{"expDate":"2026-01-15T00:00:00.000Z","isTrial":true,"issuedAt":"2026-01-01T00:00:00.000Z","licenseId":"5b0f6d0e-8a4c-4d8e-9b0a-2f1c3d4e5f60","productId":"pro","v":2}`
	if first != want {
		t.Errorf("Canonical() =\n%s\nwant\n%s", first, want)
	}

	// the same fields added to a dynamic record in different orders
	forward := map[string]any{}
	backward := map[string]any{}
	fields := [][2]any{
		{"v", 2}, {"isTrial", true}, {"productId", "pro"}, {"expDate", "2026-01-15T00:00:00.000Z"},
		{"issuedAt", "2026-01-01T00:00:00.000Z"}, {"licenseId", "5b0f6d0e-8a4c-4d8e-9b0a-2f1c3d4e5f60"},
	}
	for i := range fields {
		forward[fields[i][0].(string)] = fields[i][1]
		j := len(fields) - 1 - i
		backward[fields[j][0].(string)] = fields[j][1]
	}

	for name, record := range map[string]map[string]any{"forward": forward, "backward": backward} {
		got, err := CanonicalizeRecord(record)
		if err != nil {
			t.Fatalf("%s: CanonicalizeRecord() error = %v", name, err)
		}
		if got != want {
			t.Errorf("%s: CanonicalizeRecord() =\n%s\nwant\n%s", name, got, want)
		}
	}
}

func TestCanonicalNeverContainsLegacyDelimiterOutsideValues(t *testing.T) {
	got, err := StructuredPayload(Record{LicenseKey: "ABC-123"}).Canonical()
	if err != nil {
		t.Fatalf("Canonical() error = %v", err)
	}
	if strings.Contains(got, LegacyDelimiter) {
		t.Errorf("unexpected delimiter in %s", got)
	}
	if !strings.Contains(got, `"isTrial":false`) {
		t.Errorf("isTrial must always be signed, got %s", got)
	}
}

func TestNewPurchasePayload(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	legacy := NewPurchasePayload(SchemeLegacy, "ABC-123", "pro", issuedAt)
	if legacy.Scheme != SchemeLegacy || legacy.Key != "ABC-123" {
		t.Errorf("unexpected legacy payload %+v", legacy)
	}
	if legacy.IsTrial() {
		t.Error("purchase payload reported as trial")
	}

	structured := NewPurchasePayload(SchemeStructured, "ABC-123", "pro", issuedAt)
	if structured.Record == nil {
		t.Fatal("structured payload has no record")
	}
	r := structured.Record
	if r.Version != StructuredVersion || r.LicenseKey != "ABC-123" || r.ProductID != "pro" || r.IsTrial {
		t.Errorf("unexpected record %+v", r)
	}
	if r.IssuedAt != "2026-03-01T12:00:00.000Z" {
		t.Errorf("IssuedAt = %s", r.IssuedAt)
	}
	if r.LicenseID == "" {
		t.Error("LicenseID not set")
	}
}

func TestParsePayload(t *testing.T) {
	canonical, err := StructuredPayload(Record{IsTrial: false, LicenseKey: "ABC-123"}).Canonical()
	if err != nil {
		t.Fatalf("Canonical() error = %v", err)
	}

	tests := []struct {
		name       string
		data       string
		wantScheme Scheme
		wantErr    bool
	}{
		{"license key", "ABC-123", SchemeLegacy, false},
		{"legacy trial", "TRIAL:2026-01-15T00:00:00.000Z", SchemeLegacy, false},
		{"structured record", canonical, SchemeStructured, false},
		{"signed JSON that is not a record", `{"success":true,"uses":1}`, SchemeLegacy, false},
		{"record that is not canonical", `{"v":2,"isTrial":false,"licenseKey":"ABC-123"}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePayload(tt.data)
			if tt.wantErr {
				assertErrorCode(t, err, ErrCodeInvalidPayload)
				return
			}
			if err != nil {
				t.Fatalf("ParsePayload() error = %v", err)
			}
			if p.Scheme != tt.wantScheme {
				t.Errorf("Scheme = %s, want %s", p.Scheme, tt.wantScheme)
			}
		})
	}
}
