// Package license mints and verifies signed software licenses.
//
// A license certifies a payload. Two payload shapes exist, tagged by Scheme:
//
//   - SchemeLegacy: the payload is a plain string - the marketplace license key for a purchase,
//     or "TRIAL:<expiry>" for a trial.
//   - SchemeStructured: the payload is a Record, canonicalized per RFC 8785 before signing.
//     The trial flag is part of the signed bytes.
//
// The Minter signs a payload and returns a License ({data, sig, isTrial}).
// Encode renders a License as a single wire string and Decode parses it back:
//
//	legacy:     <data>|<base64 signature>
//	structured: v2.<base64url data>.<base64 signature>
//
// Legacy envelopes are split on the last delimiter (the signature alphabet never contains it),
// structured envelopes cannot contain either delimiter in their segments.
//
// The Verifier is the client side of the scheme: it decodes an envelope, checks the signature with the
// published public key and parses the payload.
package license
