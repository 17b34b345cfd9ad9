package license

import (
	"encoding/base64"
	"strings"
)

const (
	// LegacyDelimiter separates data and signature in legacy envelopes
	LegacyDelimiter = "|"

	// FramedPrefix starts a structured (v2) envelope
	FramedPrefix = "v2."

	// FramedSeparator separates the data and signature segments of a structured envelope
	FramedSeparator = "."
)

// Framing identifies the wire format of an envelope
type Framing string

const (
	FramingLegacy Framing = "legacy"
	FramingFramed Framing = "v2"
)

// Envelope is a decoded wire string.
type Envelope struct {
	Data    string
	Sig     string
	Framing Framing
}

// Encode renders a license as a single transportable string.
//
// Legacy licenses are framed as data|sig. Structured licenses are framed as v2.<base64url(data)>.<sig>
// so the data segment never contains a delimiter.
func Encode(l License) string {
	if l.Scheme == SchemeStructured {
		return FramedPrefix + base64.RawURLEncoding.EncodeToString([]byte(l.Data)) + FramedSeparator + l.Sig
	}
	return l.Data + LegacyDelimiter + l.Sig
}

// Decode parses a wire string produced by Encode.
//
// Strings containing the legacy delimiter are legacy envelopes and are split on its last occurrence:
// the base64 signature never contains it, so data holding the delimiter still decodes unambiguously.
// Strings starting with FramedPrefix are structured envelopes.
// Anything else, empty segments, or segments that are not valid base64 return a malformed envelope error.
func Decode(wire string) (Envelope, error) {
	if wire == "" {
		return Envelope{}, NewMalformedEnvelopeError("envelope is empty")
	}

	if i := strings.LastIndex(wire, LegacyDelimiter); i >= 0 {
		env := Envelope{Data: wire[:i], Sig: wire[i+len(LegacyDelimiter):], Framing: FramingLegacy}
		if err := checkSegments(env); err != nil {
			return Envelope{}, err
		}
		return env, nil
	}

	if !strings.HasPrefix(wire, FramedPrefix) {
		return Envelope{}, NewMalformedEnvelopeError("envelope has no delimiter")
	}

	segments := strings.Split(strings.TrimPrefix(wire, FramedPrefix), FramedSeparator)
	if len(segments) != 2 {
		return Envelope{}, NewMalformedEnvelopeError("structured envelope must have exactly two segments")
	}

	data, err := base64.RawURLEncoding.DecodeString(segments[0])
	if err != nil {
		return Envelope{}, WrapMalformedEnvelopeError(err, "data segment is not valid base64url")
	}

	env := Envelope{Data: string(data), Sig: segments[1], Framing: FramingFramed}
	if err := checkSegments(env); err != nil {
		return Envelope{}, err
	}
	return env, nil
}

func checkSegments(env Envelope) error {
	if env.Data == "" {
		return NewMalformedEnvelopeError("envelope data is empty")
	}
	if env.Sig == "" {
		return NewMalformedEnvelopeError("envelope signature is empty")
	}
	if _, err := base64.StdEncoding.DecodeString(env.Sig); err != nil {
		return WrapMalformedEnvelopeError(err, "envelope signature is not valid base64")
	}
	return nil
}
