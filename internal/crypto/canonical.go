// license payloads are canonicalized per RFC 8785 (JCS) before signing so that a verifier
// can rebuild the exact signed bytes regardless of the order in which fields were added.
// this implementation uses the gowebpki/jcs library to perform the canonicalization
package crypto

import (
	"encoding/json"

	"github.com/gowebpki/jcs"
)

// CanonicalizeJSON converts JSON to canonical form per RFC 8785
//
// If the input is not valid JSON, an error is returned (handled by jcs library).
func CanonicalizeJSON(jsonData []byte) ([]byte, error) {
	return jcs.Transform(jsonData)
}

// CanonicalizeValue marshals v to JSON and returns the RFC 8785 canonical form.
//
// Map keys and struct fields end up in the same (sorted) order whatever their declaration or insertion order.
func CanonicalizeValue(v any) ([]byte, error) {
	jsonData, err := json.Marshal(v)
	if err != nil {
		return nil, WrapValidationError(err, "failed to marshal value")
	}

	canonical, err := jcs.Transform(jsonData)
	if err != nil {
		return nil, WrapValidationError(err, "failed to canonicalize JSON")
	}
	return canonical, nil
}
