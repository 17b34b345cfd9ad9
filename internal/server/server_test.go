package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/information-sharing-networks/license-server/internal/config"
	"github.com/information-sharing-networks/license-server/internal/crypto"
	"github.com/information-sharing-networks/license-server/internal/license"
)

// marketplace stub responses keyed by license key
var marketplaceResponses = map[string]struct {
	status int
	body   string
}{
	"ABC-123":  {http.StatusOK, `{"success":true,"uses":1,"purchase":{"license_key":"ABC-123","product_permalink":"pro-permalink"}}`},
	"REJECTED": {http.StatusOK, `{"success":false,"message":"That license does not exist for the provided product."}`},
	"MISSING":  {http.StatusNotFound, `{"success":false}`},
	"DOWN":     {http.StatusBadGateway, ``},
}

func newMarketplaceStub(t *testing.T) *httptest.Server {
	t.Helper()

	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v2/licenses/verify" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		resp, ok := marketplaceResponses[r.PostForm.Get("license_key")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"success":false,"message":"That license does not exist for the provided product."}`)
			return
		}
		w.WriteHeader(resp.status)
		_, _ = io.WriteString(w, resp.body)
	}))
	t.Cleanup(stub.Close)
	return stub
}

// newTestServer returns a server using a fresh RSA key and the marketplace stub, plus a verifier for its licenses
func newTestServer(t *testing.T, extraEnv ...string) (*Server, *license.Verifier) {
	t.Helper()

	stub := newMarketplaceStub(t)

	privateKey, err := crypto.GenerateRSAKeyPair(2048)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	pemData, err := crypto.EncodePrivateKeyPEM(privateKey)
	if err != nil {
		t.Fatalf("failed to encode key: %v", err)
	}

	environ := []string{
		"ENVIRONMENT=test",
		"LICENSE_PRIVATE_KEY=" + crypto.FlattenPEM(pemData, "_"),
		"MARKETPLACE_API_URL=" + stub.URL + "/v2",
		"PRODUCT_PERMALINKS=pro=pro-permalink",
		"MARKETPLACE_BREAKER_FAILURES=0",
		"RATE_LIMIT_RPS=0",
	}
	cfg, err := config.LoadServerConfig(append(environ, extraEnv...))
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	server, err := NewServer(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}

	verifier, err := license.NewVerifier(&privateKey.PublicKey)
	if err != nil {
		t.Fatalf("failed to create verifier: %v", err)
	}
	return server, verifier
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	var decoded map[string]any
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
		}
	}
	return w, decoded
}

// scenario A: a verified purchase is activated
func TestActivateLicense(t *testing.T) {
	server, verifier := newTestServer(t)

	for _, path := range []string{"/activate-license", "/verify-license", LegacyPrefix + "/activate-license"} {
		t.Run(path, func(t *testing.T) {
			w, body := doRequest(t, server.Router(), http.MethodPost, path, `{"licenseKey":"ABC-123","productId":"pro"}`)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
			}

			lic, _ := body["license"].(map[string]any)
			data, _ := lic["data"].(string)
			sig, _ := lic["sig"].(string)
			if !strings.Contains(data, `"ABC-123"`) || sig == "" || lic["isTrial"] != false {
				t.Fatalf("unexpected license %v", lic)
			}

			signed, _ := body["signedLicense"].(string)
			verified, err := verifier.Verify(signed)
			if err != nil {
				t.Fatalf("signedLicense does not verify: %v", err)
			}
			if verified.Data != data || verified.LicenseKey != "ABC-123" || verified.ProductID != "pro" {
				t.Errorf("unexpected verified license %+v", verified)
			}
		})
	}
}

// scenario B: the marketplace does not confirm the purchase
func TestActivateLicenseNotVerified(t *testing.T) {
	server, _ := newTestServer(t)

	for _, key := range []string{"REJECTED", "MISSING", "DOWN", "UNKNOWN"} {
		t.Run(key, func(t *testing.T) {
			w, body := doRequest(t, server.Router(), http.MethodPost, "/activate-license", `{"licenseKey":"`+key+`","productId":"pro"}`)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
			}
			if _, ok := body["errors"]; !ok {
				t.Errorf("response has no errors field: %v", body)
			}
			if _, ok := body["license"]; ok {
				t.Errorf("response includes a license: %v", body)
			}
			if _, ok := body["signedLicense"]; ok {
				t.Errorf("response includes a signed license: %v", body)
			}
		})
	}
}

// scenario C: schema validation
func TestActivateLicenseValidation(t *testing.T) {
	server, _ := newTestServer(t)

	w, body := doRequest(t, server.Router(), http.MethodPost, "/activate-license", `{"productId":"pro"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422: %s", w.Code, w.Body.String())
	}
	details, _ := body["errors"].([]any)
	if len(details) != 1 {
		t.Fatalf("errors = %v, want one field error", body["errors"])
	}
	detail, _ := details[0].(map[string]any)
	if detail["field"] != "licenseKey" {
		t.Errorf("field = %v, want licenseKey", detail["field"])
	}

	w, _ = doRequest(t, server.Router(), http.MethodPost, "/activate-license", `{not json`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unparsable body: status = %d, want 400", w.Code)
	}
}

// scenario D: license endpoints only accept POST
func TestMethodNotAllowed(t *testing.T) {
	server, _ := newTestServer(t)

	paths := []string{
		"/activate-license",
		"/verify-license",
		"/activate-trial",
		LegacyPrefix + "/activate-license",
		LegacyPrefix + "/activate-trial",
	}
	for _, path := range paths {
		for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
			w, body := doRequest(t, server.Router(), method, path, "")
			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("%s %s: status = %d, want 405", method, path, w.Code)
				continue
			}
			if body["errorCode"] != float64(7003) {
				t.Errorf("%s %s: errorCode = %v", method, path, body["errorCode"])
			}
		}
	}
}

func TestUnknownProduct(t *testing.T) {
	server, _ := newTestServer(t)

	requests := map[string]string{
		"/activate-license": `{"licenseKey":"ABC-123","productId":"enterprise"}`,
		"/activate-trial":   `{"productId":"enterprise"}`,
	}
	for path, reqBody := range requests {
		w, body := doRequest(t, server.Router(), http.MethodPost, path, reqBody)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d, want 400: %s", path, w.Code, w.Body.String())
		}
		if body["errorCode"] != float64(8002) {
			t.Errorf("%s: errorCode = %v, want 8002", path, body["errorCode"])
		}
	}
}

func TestActivateTrial(t *testing.T) {
	t.Run("structured", func(t *testing.T) {
		server, verifier := newTestServer(t)

		w, body := doRequest(t, server.Router(), http.MethodPost, "/activate-trial", `{"productId":"pro"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
		}
		signed, _ := body["signedLicense"].(string)
		if !strings.HasPrefix(signed, "v2.") {
			t.Errorf("signedLicense = %q, want framed v2 envelope", signed)
		}
		verified, err := verifier.Verify(signed)
		if err != nil {
			t.Fatalf("trial does not verify: %v", err)
		}
		if !verified.IsTrial || verified.ExpiresAt == nil || verified.ProductID != "pro" {
			t.Errorf("unexpected trial %+v", verified)
		}
	})

	t.Run("product required", func(t *testing.T) {
		server, _ := newTestServer(t)

		w, _ := doRequest(t, server.Router(), http.MethodPost, "/activate-trial", "")
		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want 422: %s", w.Code, w.Body.String())
		}
	})

	t.Run("legacy accepts an empty body", func(t *testing.T) {
		server, verifier := newTestServer(t, "LICENSE_SCHEME=legacy", "MARKETPLACE_PRODUCT_PERMALINK=legacy-permalink")

		w, body := doRequest(t, server.Router(), http.MethodPost, LegacyPrefix+"/activate-trial", "")
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
		}
		signed, _ := body["signedLicense"].(string)
		if !strings.HasPrefix(signed, license.TrialPrefix) || !strings.Contains(signed, "|") {
			t.Errorf("signedLicense = %q, want TRIAL:<expDate>|<sig>", signed)
		}
		verified, err := verifier.Verify(signed)
		if err != nil {
			t.Fatalf("trial does not verify: %v", err)
		}
		if !verified.IsTrial {
			t.Error("legacy trial not flagged as trial")
		}
	})
}

func TestRequestTooLarge(t *testing.T) {
	server, _ := newTestServer(t, "MAX_REQUEST_SIZE=64")

	w, body := doRequest(t, server.Router(), http.MethodPost, "/activate-license", `{"licenseKey":"`+strings.Repeat("A", 100)+`"}`)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", w.Code)
	}
	if body["errorCode"] != float64(7004) {
		t.Errorf("errorCode = %v, want 7004", body["errorCode"])
	}
}

func TestCommonEndpoints(t *testing.T) {
	server, _ := newTestServer(t)

	tests := []struct {
		path       string
		wantStatus int
		wantBody   string
	}{
		{"/health/live", http.StatusOK, "OK"},
		{"/health/ready", http.StatusOK, `"status":"ready"`},
		{"/version", http.StatusOK, `"service":"license-server"`},
		{"/.well-known/jwks.json", http.StatusOK, `"alg":"RS256"`},
		{"/docs/openapi.json", http.StatusOK, `"/activate-license"`},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w, _ := doRequest(t, server.Router(), http.MethodGet, tt.path, "")
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if !strings.Contains(w.Body.String(), tt.wantBody) {
				t.Errorf("body %q does not contain %q", w.Body.String(), tt.wantBody)
			}
			if w.Header().Get("X-Content-Type-Options") != "nosniff" {
				t.Error("security headers not set")
			}
		})
	}
}
