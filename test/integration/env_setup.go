//go:build integration

package integration

// Test environment setup and server lifecycle management.
//
// By default the server logs are not included in the test output, you can enable them with:
//
//	ENABLE_SERVER_LOGS=true go test -tags=integration -v ./test/integration

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/information-sharing-networks/license-server/internal/config"
	"github.com/information-sharing-networks/license-server/internal/crypto"
	"github.com/information-sharing-networks/license-server/internal/logger"
	"github.com/information-sharing-networks/license-server/internal/server"
)

// testEnv provides access to the running server and the marketplace stub
type testEnv struct {
	baseURL  string
	cfg      *config.ServerEnvironment
	stub     *marketplaceStub
	shutdown func()
}

// marketplaceStub answers /licenses/verify for the license keys in purchases
type marketplaceStub struct {
	server *httptest.Server

	// purchases maps license keys to the product permalink they were bought for
	purchases map[string]string

	// down makes the stub return 503 for every request
	down atomic.Bool
}

func newMarketplaceStub(t *testing.T) *marketplaceStub {
	t.Helper()

	m := &marketplaceStub{purchases: map[string]string{
		"PRO-KEY-0001":   "pro-permalink",
		"BASIC-KEY-0001": "basic-permalink",
	}}

	m.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.down.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if r.Method != http.MethodPost || r.URL.Path != "/v2/licenses/verify" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		key := r.PostForm.Get("license_key")
		permalink, ok := m.purchases[key]
		if !ok || permalink != r.PostForm.Get("product_permalink") {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"success":false,"message":"That license does not exist for the provided product."}`)
			return
		}
		_, _ = fmt.Fprintf(w, `{"success":true,"uses":1,"purchase":{"license_key":%q,"product_permalink":%q,"email":"buyer@example.com"}}`, key, permalink)
	}))
	t.Cleanup(m.server.Close)
	return m
}

// startInProcessServer starts license-server with a fresh signing key of keyType (rsa or ed25519).
// extraEnv entries (NAME=value) override the defaults.
func startInProcessServer(t *testing.T, keyType string, extraEnv ...string) *testEnv {
	t.Helper()

	testEnv := &testEnv{stub: newMarketplaceStub(t)}

	var privateKey any
	var err error
	switch keyType {
	case "rsa":
		privateKey, err = crypto.GenerateRSAKeyPair(2048)
	case "ed25519":
		privateKey, err = crypto.GenerateEd25519KeyPair()
	default:
		t.Fatalf("key type: %s not supported (use rsa or ed25519)", keyType)
	}
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	pemData, err := crypto.EncodePrivateKeyPEM(privateKey)
	if err != nil {
		t.Fatalf("failed to encode key: %v", err)
	}

	port := findFreePort(t)
	environ := []string{
		"ENVIRONMENT=test",
		"HOST=localhost",
		fmt.Sprintf("PORT=%d", port),
		"LOG_LEVEL=none",
		"RATE_LIMIT_RPS=0",
		"LICENSE_PRIVATE_KEY=" + crypto.FlattenPEM(pemData, "_"),
		"MARKETPLACE_API_URL=" + testEnv.stub.server.URL + "/v2",
		"PRODUCT_PERMALINKS=pro=pro-permalink|basic=basic-permalink",
		"MARKETPLACE_BREAKER_FAILURES=0",
	}
	environ = append(environ, extraEnv...)

	cfg, err := config.LoadServerConfig(environ)
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel := logger.ParseLogLevel("none")
	if os.Getenv("ENABLE_SERVER_LOGS") == "true" {
		logLevel = logger.ParseLogLevel("debug")
	}
	appLogger := logger.InitLogger(logLevel, "test")

	serverInstance, err := server.NewServer(cfg, appLogger)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}

	serverCtx, serverCancel := context.WithCancel(context.Background())

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := serverInstance.Start(serverCtx); err != nil {
			serverDone <- err
		}
	}()

	testEnv.shutdown = func() {
		serverCancel()

		select {
		case err := <-serverDone:
			if err != nil {
				t.Logf("server shutdown with error: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Log("server shutdown timeout")
		}
	}
	t.Cleanup(testEnv.shutdown)

	testEnv.baseURL = fmt.Sprintf("http://localhost:%d", port)
	testEnv.cfg = cfg

	if !waitForServer(t, testEnv.baseURL+"/health/live", 30*time.Second) {
		t.Fatal("Server failed to start within timeout")
	}

	return testEnv
}

func findFreePort(t *testing.T) int {
	t.Helper()
	listener, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("Failed to find free port: %v", err)
	}
	defer listener.Close()

	addr := listener.Addr().(*net.TCPAddr)
	return addr.Port
}

func waitForServer(t *testing.T, url string, timeout time.Duration) bool {
	t.Helper()

	client := &http.Client{Timeout: 1 * time.Second}
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return true
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	return false
}
