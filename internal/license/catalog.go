package license

import (
	"fmt"
	"slices"
	"strings"
)

// Catalog maps product ids to marketplace permalinks.
//
// A catalog built from the legacy single product configuration only has a default permalink,
// which is used when a request does not name a product.
type Catalog struct {
	permalinks       map[string]string
	defaultPermalink string
}

// NewCatalog creates a catalog. permalinks may be nil.
func NewCatalog(permalinks map[string]string, defaultPermalink string) *Catalog {
	c := &Catalog{
		permalinks:       make(map[string]string, len(permalinks)),
		defaultPermalink: defaultPermalink,
	}
	for id, permalink := range permalinks {
		c.permalinks[id] = permalink
	}
	return c
}

// ParseProductPermalinks parses "productId=permalink" entries.
func ParseProductPermalinks(entries []string) (map[string]string, error) {
	permalinks := make(map[string]string, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		id, permalink, ok := strings.Cut(entry, "=")
		id, permalink = strings.TrimSpace(id), strings.TrimSpace(permalink)
		if !ok || id == "" || permalink == "" {
			return nil, fmt.Errorf("invalid product permalink %q (expected productId=permalink)", entry)
		}
		if _, dup := permalinks[id]; dup {
			return nil, fmt.Errorf("duplicate product id %q", id)
		}
		permalinks[id] = permalink
	}
	return permalinks, nil
}

// Contains reports whether productID is in the catalog
func (c *Catalog) Contains(productID string) bool {
	_, ok := c.permalinks[productID]
	return ok
}

// RequiresProductID reports whether requests must name a product (there is no default permalink).
func (c *Catalog) RequiresProductID() bool {
	return c.defaultPermalink == ""
}

// ProductIDs returns the known product ids in sorted order
func (c *Catalog) ProductIDs() []string {
	ids := make([]string, 0, len(c.permalinks))
	for id := range c.permalinks {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Resolve returns the marketplace permalink for productID.
//
// An empty productID resolves to the default permalink, or fails with a validation error when there is none.
// A productID that is not in the catalog fails with an unknown product error.
func (c *Catalog) Resolve(productID string) (string, error) {
	if productID == "" {
		if c.defaultPermalink == "" {
			return "", NewValidationError("productId", "productId is required")
		}
		return c.defaultPermalink, nil
	}

	permalink, ok := c.permalinks[productID]
	if !ok {
		return "", NewUnknownProductError(productID)
	}
	return permalink, nil
}

// Check validates an optional product id without resolving it.
// An empty productID is only accepted when the catalog has a default product or no products at all.
func (c *Catalog) Check(productID string) error {
	if productID == "" {
		if c.RequiresProductID() && len(c.permalinks) > 0 {
			return NewValidationError("productId", "productId is required")
		}
		return nil
	}
	if !c.Contains(productID) {
		return NewUnknownProductError(productID)
	}
	return nil
}
