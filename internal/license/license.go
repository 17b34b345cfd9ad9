package license

// License is a signed payload as returned to the client.
//
// Only Data and Sig are trust bearing. IsTrial is derived from the signed payload when the license is minted;
// for structured payloads the same flag is inside the signed data.
type License struct {
	Data    string `json:"data"`
	Sig     string `json:"sig"`
	IsTrial bool   `json:"isTrial"`

	// Scheme selects the envelope framing used by Encode
	Scheme Scheme `json:"-"`
}

// Encode returns the wire form of the license.
func (l License) Encode() string {
	return Encode(l)
}
