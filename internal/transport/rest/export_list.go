package rest

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Sant0sss/jpr-iphone-stock/internal/service"
	"github.com/Sant0sss/jpr-iphone-stock/internal/transport/auth"
)

const exportIDPrefix = "exports:"

type ExportListService interface {
	GetExports(ctx context.Context, sellerID int64) ([]service.ExportView, error)
	GetExport(ctx context.Context, exportID string, sellerID int64) (*service.ExportView, error)
}

func (h *Handler) listExports(w http.ResponseWriter, r *http.Request) {
	sellerID, err := auth.GetSellerID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	exports, err := h.exportList.GetExports(r.Context(), sellerID)
	if err != nil {
		log.Printf("[HTTP] listExports error: %v", err)
		ErrorInternal(w, "failed to get exports")
		return
	}

	Success(w, "", exports)
}

func (h *Handler) getExport(w http.ResponseWriter, r *http.Request) {
	sellerID, err := auth.GetSellerID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	exportIDParam := chi.URLParam(r, "export_id")
	if exportIDParam == "" {
		ErrorBadRequest(w, "export_id is required")
		return
	}
	// clients may send either the bare uuid or the full key
	exportID := exportIDPrefix + strings.TrimPrefix(exportIDParam, exportIDPrefix)

	export, err := h.exportList.GetExport(r.Context(), exportID, sellerID)
	if err != nil {
		if !errors.Is(err, service.ErrExportNotFound) {
			log.Printf("[HTTP] getExport error: %v", err)
			ErrorInternal(w, "failed to get export")
			return
		}
		ErrorNotFound(w, "export not found")
		return
	}

	Success(w, "", export)
}
