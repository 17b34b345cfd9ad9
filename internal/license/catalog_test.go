package license

import (
	"slices"
	"testing"
)

func TestParseProductPermalinks(t *testing.T) {
	tests := []struct {
		name    string
		entries []string
		want    map[string]string
		wantErr bool
	}{
		{"empty", nil, map[string]string{}, false},
		{"entries", []string{"pro=abcd", " lite = efgh ", ""}, map[string]string{"pro": "abcd", "lite": "efgh"}, false},
		{"missing separator", []string{"pro"}, nil, true},
		{"missing permalink", []string{"pro="}, nil, true},
		{"duplicate", []string{"pro=a", "pro=b"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseProductPermalinks(tt.entries)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("%s = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestCatalogResolve(t *testing.T) {
	multi := NewCatalog(map[string]string{"pro": "pro-permalink"}, "")
	single := NewCatalog(nil, "legacy-permalink")

	tests := []struct {
		name      string
		catalog   *Catalog
		productID string
		want      string
		wantCode  ErrorCode
	}{
		{"known product", multi, "pro", "pro-permalink", ""},
		{"unknown product", multi, "enterprise", "", ErrCodeUnknownProduct},
		{"missing product without default", multi, "", "", ErrCodeValidation},
		{"default product", single, "", "legacy-permalink", ""},
		{"unknown product with default", single, "pro", "", ErrCodeUnknownProduct},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.catalog.Resolve(tt.productID)
			if tt.wantCode != "" {
				assertErrorCode(t, err, tt.wantCode)
				return
			}
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}

	if !multi.RequiresProductID() || single.RequiresProductID() {
		t.Error("RequiresProductID() reported the wrong value")
	}
	if ids := NewCatalog(map[string]string{"b": "1", "a": "2"}, "").ProductIDs(); !slices.Equal(ids, []string{"a", "b"}) {
		t.Errorf("ProductIDs() = %v", ids)
	}
}
