package rest

import (
	"log"
	"net/http"

	"github.com/Sant0sss/jpr-iphone-stock/internal/transport/auth"
)

func (h *Handler) exportQuotes(w http.ResponseWriter, r *http.Request) {
	sellerID, err := auth.GetSellerID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	req, err := ValidateQuotesExportRequest(r)
	if err != nil {
		writeRequestError(w, err)
		return
	}

	exportID, err := h.exporter.StartQuotesExport(r.Context(), *req, sellerID)
	if err != nil {
		log.Printf("[HTTP] exportQuotes error: %v", err)
		ErrorInternal(w, "failed to start export")
		return
	}

	SuccessAccepted(w, "export started", map[string]string{"export_id": exportID})
}
