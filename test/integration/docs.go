// Package integration contains end-to-end tests for license-server.
//
// The server is started in-process on a free port with a marketplace stub (httptest) in place of the
// real marketplace API. The tests use real HTTP clients and verify issued licenses against the key
// published at /.well-known/jwks.json, as a client application would.
//
// These tests assume the crypto and license packages are working correctly (tested separately).
//
//	go test -tags=integration -v ./test/integration
package integration
