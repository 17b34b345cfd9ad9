package api

import "github.com/information-sharing-networks/license-server/internal/license"

// ActivationRequest is the body of POST /activate-license
type ActivationRequest struct {
	// LicenseKey is the key issued by the marketplace with the purchase
	LicenseKey string `json:"licenseKey" validate:"required,max=256" example:"A1B2C3D4-E5F60718-293A4B5C-6D7E8F90"`

	// ProductID selects the product in the catalog. Optional when a default product is configured
	ProductID string `json:"productId,omitempty" validate:"omitempty,max=128" example:"pro"`
}

// TrialRequest is the (optional) body of POST /activate-trial
type TrialRequest struct {
	// ProductID selects the product in the catalog. Required when the catalog has products and no default
	ProductID string `json:"productId,omitempty" validate:"omitempty,max=128" example:"pro"`
}

// LicenseResponse is returned when a license is issued
type LicenseResponse struct {
	License license.License `json:"license"`

	// SignedLicense is the license encoded as a single string (data|sig or v2.<data>.<sig>)
	SignedLicense string `json:"signedLicense" example:"v2.eyJpc1RyaWFsIjp0cnVlfQ.c2lnbmF0dXJl"`
}

// NewLicenseResponse creates the response for an issued license
func NewLicenseResponse(l license.License) LicenseResponse {
	return LicenseResponse{
		License:       l,
		SignedLicense: l.Encode(),
	}
}

// FieldError describes one invalid request field
type FieldError struct {
	Field   string `json:"field" example:"licenseKey"`
	Message string `json:"message" example:"licenseKey is required"`
}
