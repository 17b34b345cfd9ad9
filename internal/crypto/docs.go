// Package crypto provides the key handling and signature primitives used to sign licenses.
//
// Keys are RSA (PKCS#1 v1.5 with SHA-256) or Ed25519, loaded from PEM or JWK files or from a
// flattened PEM string held in an environment variable. Signatures are returned as standard base64.
//
// these are low level functions - see the license package for minting and verifying licenses.
package crypto
