package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDecodeRequest(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantCode   ErrorCode
		wantFields []string
		wantKey    string
	}{
		{name: "valid", body: `{"licenseKey":"ABC-123","productId":"pro"}`, wantKey: "ABC-123"},
		{name: "empty body", body: ``, wantCode: ErrCodeValidation, wantFields: []string{"licenseKey"}},
		{name: "missing licenseKey", body: `{"productId":"pro"}`, wantCode: ErrCodeValidation, wantFields: []string{"licenseKey"}},
		{name: "empty licenseKey", body: `{"licenseKey":""}`, wantCode: ErrCodeValidation, wantFields: []string{"licenseKey"}},
		{name: "wrong type", body: `{"licenseKey":123}`, wantCode: ErrCodeValidation, wantFields: []string{"licenseKey"}},
		{name: "unknown field", body: `{"licenseKey":"ABC-123","admin":true}`, wantCode: ErrCodeValidation, wantFields: []string{"admin"}},
		{name: "array body", body: `[]`, wantCode: ErrCodeValidation},
		{name: "not json", body: `licenseKey=ABC-123`, wantCode: ErrCodeMalformedRequest},
		{name: "truncated json", body: `{"licenseKey":`, wantCode: ErrCodeMalformedRequest},
		{name: "trailing data", body: `{"licenseKey":"a"}{}`, wantCode: ErrCodeMalformedRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/activate-license", strings.NewReader(tt.body))

			var req ActivationRequest
			err := DecodeRequest(r, &req)

			if tt.wantCode == 0 {
				if err != nil {
					t.Fatalf("DecodeRequest() error = %v", err)
				}
				if req.LicenseKey != tt.wantKey {
					t.Errorf("LicenseKey = %q, want %q", req.LicenseKey, tt.wantKey)
				}
				return
			}

			var apiErr *ApiError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *ApiError, got %T (%v)", err, err)
			}
			if apiErr.Code() != tt.wantCode {
				t.Fatalf("error code = %d, want %d (%v)", apiErr.Code(), tt.wantCode, err)
			}
			if len(tt.wantFields) > 0 {
				if len(apiErr.Details()) != len(tt.wantFields) {
					t.Fatalf("details = %+v, want fields %v", apiErr.Details(), tt.wantFields)
				}
				for i, field := range tt.wantFields {
					if apiErr.Details()[i].Field != field {
						t.Errorf("details[%d].Field = %q, want %q", i, apiErr.Details()[i].Field, field)
					}
				}
			}
		})
	}
}

func TestDecodeRequestTooLarge(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/activate-license", strings.NewReader(`{"licenseKey":"`+strings.Repeat("A", 100)+`"}`))
	r.Body = http.MaxBytesReader(w, r.Body, 10)

	var req ActivationRequest
	err := DecodeRequest(r, &req)

	var apiErr *ApiError
	if !errors.As(err, &apiErr) || apiErr.Code() != ErrCodeRequestTooLarge {
		t.Fatalf("expected request too large error, got %v", err)
	}
}

func TestDecodeTrialRequest(t *testing.T) {
	for _, body := range []string{``, `{}`, `  `} {
		r := httptest.NewRequest(http.MethodPost, "/activate-trial", strings.NewReader(body))
		var req TrialRequest
		if err := DecodeRequest(r, &req); err != nil {
			t.Errorf("DecodeRequest(%q) error = %v", body, err)
		}
	}
}
