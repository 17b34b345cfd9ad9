package license

import (
	"fmt"
	"strings"
)

// Scheme identifies the payload shape and the envelope framing of a license.
type Scheme string

const (
	// SchemeLegacy signs a plain string and frames the envelope as data|sig
	SchemeLegacy Scheme = "legacy"

	// SchemeStructured signs a canonical JSON Record and frames the envelope as v2.<data>.<sig>
	SchemeStructured Scheme = "v2"
)

// StructuredVersion is the value of the "v" field of structured payloads.
const StructuredVersion = 2

// ParseScheme converts a LICENSE_SCHEME value to a Scheme.
// "v1" is accepted as an alias of the legacy scheme and "structured" of v2.
func ParseScheme(s string) (Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "legacy", "v1":
		return SchemeLegacy, nil
	case "v2", "structured":
		return SchemeStructured, nil
	default:
		return "", fmt.Errorf("unknown license scheme %q (must be legacy or v2)", s)
	}
}

// DefaultTrialDays returns the trial length used when none is configured:
// legacy trials last 7 days, structured trials 14.
func (s Scheme) DefaultTrialDays() int {
	if s == SchemeLegacy {
		return 7
	}
	return 14
}

func (s Scheme) String() string { return string(s) }
