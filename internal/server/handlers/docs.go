package handlers

import (
	"net/http"

	"github.com/swaggo/swag"

	// registers the API document
	_ "github.com/information-sharing-networks/license-server/internal/docs"
)

// HandleOpenAPI godoc
//
//	@Summary		Get the API document
//	@Description	Returns the swagger document describing this API
//	@Tags			Common
//	@Produce		json
//	@Success		200	{object}	map[string]any	"API document"
//	@Router			/docs/openapi.json [get]
func HandleOpenAPI(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		http.Error(w, "API document not available", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(doc))
}
