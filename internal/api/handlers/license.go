package handlers

// license.go implements the license activation and trial endpoints

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/information-sharing-networks/license-server/internal/api"
	"github.com/information-sharing-networks/license-server/internal/license"
	"github.com/information-sharing-networks/license-server/internal/logger"
)

// LicenseIssuer issues signed licenses (implemented by services.LicenseService)
type LicenseIssuer interface {
	Activate(ctx context.Context, licenseKey, productID string) (license.License, error)
	IssueTrial(ctx context.Context, productID string) (license.License, error)
}

// LicenseHandler handles the license endpoints
type LicenseHandler struct {
	issuer LicenseIssuer
}

// NewLicenseHandler creates a new handler for the license endpoints
func NewLicenseHandler(issuer LicenseIssuer) *LicenseHandler {
	return &LicenseHandler{
		issuer: issuer,
	}
}

// HandleActivateLicense godoc
//
//	@Summary		Activate a purchased license
//	@Description	Verifies the license key with the marketplace and returns a signed license.
//	@Description
//	@Description	`productId` selects the product when the server sells more than one product.
//	@Description	The signed license can be verified offline with the key published at /.well-known/jwks.json.
//	@Tags			Licenses
//	@Accept			json
//	@Produce		json
//	@Param			request	body		api.ActivationRequest	true	"License key"
//	@Success		200		{object}	api.LicenseResponse		"Signed license"
//	@Failure		400		{object}	api.ErrorResponse		"Malformed request, purchase not verified or unknown product"
//	@Failure		405		{object}	api.ErrorResponse		"Method not allowed"
//	@Failure		422		{object}	api.ErrorResponse		"Request body failed validation"
//	@Failure		500		{object}	api.ErrorResponse		"Signing key not configured"
//	@Router			/activate-license [post]
func (h *LicenseHandler) HandleActivateLicense(w http.ResponseWriter, r *http.Request) {
	var req api.ActivationRequest
	if err := api.DecodeRequest(r, &req); err != nil {
		api.RespondWithErrorResponse(w, r, err)
		return
	}

	logger.ContextWithLogAttrs(r.Context(), slog.String("product_id", req.ProductID))

	l, err := h.issuer.Activate(r.Context(), req.LicenseKey, req.ProductID)
	if err != nil {
		api.RespondWithErrorResponse(w, r, err)
		return
	}

	logger.ContextRequestLogger(r.Context()).Info("license activated",
		slog.String("product_id", req.ProductID),
	)
	api.RespondWithPayload(w, http.StatusOK, api.NewLicenseResponse(l))
}

// HandleActivateTrial godoc
//
//	@Summary		Issue a trial license
//	@Description	Returns a signed trial license that expires a fixed number of days after issue.
//	@Description	The request body is optional when the server has a default product.
//	@Tags			Licenses
//	@Accept			json
//	@Produce		json
//	@Param			request	body		api.TrialRequest		false	"Trial product"
//	@Success		200		{object}	api.LicenseResponse		"Signed trial license"
//	@Failure		400		{object}	api.ErrorResponse		"Malformed request or unknown product"
//	@Failure		405		{object}	api.ErrorResponse		"Method not allowed"
//	@Failure		422		{object}	api.ErrorResponse		"Request body failed validation"
//	@Failure		500		{object}	api.ErrorResponse		"Signing key not configured"
//	@Router			/activate-trial [post]
func (h *LicenseHandler) HandleActivateTrial(w http.ResponseWriter, r *http.Request) {
	var req api.TrialRequest
	if err := api.DecodeRequest(r, &req); err != nil {
		api.RespondWithErrorResponse(w, r, err)
		return
	}

	l, err := h.issuer.IssueTrial(r.Context(), req.ProductID)
	if err != nil {
		api.RespondWithErrorResponse(w, r, err)
		return
	}

	logger.ContextRequestLogger(r.Context()).Info("trial license issued",
		slog.String("product_id", req.ProductID),
	)
	api.RespondWithPayload(w, http.StatusOK, api.NewLicenseResponse(l))
}
