package license

import (
	"time"

	"github.com/google/uuid"
)

// TrialGenerator builds trial payloads that expire a fixed number of days after issue.
type TrialGenerator struct {
	scheme  Scheme
	days    int
	catalog *Catalog
	now     func() time.Time
}

// TrialOption configures a TrialGenerator
type TrialOption func(*TrialGenerator)

// WithClock replaces time.Now (used in tests)
func WithClock(now func() time.Time) TrialOption {
	return func(g *TrialGenerator) { g.now = now }
}

// NewTrialGenerator creates a trial generator.
// days <= 0 selects the scheme default (see Scheme.DefaultTrialDays). A nil catalog accepts any product id.
func NewTrialGenerator(scheme Scheme, days int, catalog *Catalog, opts ...TrialOption) *TrialGenerator {
	if days <= 0 {
		days = scheme.DefaultTrialDays()
	}
	g := &TrialGenerator{
		scheme:  scheme,
		days:    days,
		catalog: catalog,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Days returns the trial length
func (g *TrialGenerator) Days() int { return g.days }

// Generate returns a trial payload expiring Days() days from now.
//
// productID is checked against the catalog. Legacy payloads are "TRIAL:<expDate>" and do not carry the product id.
func (g *TrialGenerator) Generate(productID string) (Payload, error) {
	if g.catalog != nil {
		if err := g.catalog.Check(productID); err != nil {
			return Payload{}, err
		}
	}

	issuedAt := g.now().UTC()
	expDate := FormatTimestamp(TrialExpiry(issuedAt, g.days))

	if g.scheme == SchemeLegacy {
		return LegacyPayload(TrialPrefix + expDate), nil
	}

	return StructuredPayload(Record{
		IsTrial:   true,
		ProductID: productID,
		ExpDate:   expDate,
		IssuedAt:  FormatTimestamp(issuedAt),
		LicenseID: uuid.NewString(),
	}), nil
}

// TrialExpiry returns the expiry of a trial issued at t: exactly days*24h later.
func TrialExpiry(t time.Time, days int) time.Time {
	return t.UTC().AddDate(0, 0, days)
}
