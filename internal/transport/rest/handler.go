package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Sant0sss/jpr-iphone-stock/internal/domain"
	"github.com/Sant0sss/jpr-iphone-stock/internal/pricing"
	"github.com/Sant0sss/jpr-iphone-stock/internal/repository"
	"github.com/Sant0sss/jpr-iphone-stock/internal/service"
)

type QuoteService interface {
	Rates(channel pricing.PaymentChannel, brand pricing.CardBrand) service.RatesView
	Simulate(in service.SimulationInput) service.SimulationResult
	ClubQuote(in service.QuoteInput) service.ClubQuoteResult
	ProductQuote(ctx context.Context, id string, in service.QuoteInput) (*service.ProductQuoteResult, error)
	ListProducts(ctx context.Context, f repository.ProductsFilter) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
}

type QuoteExporter interface {
	StartQuotesExport(ctx context.Context, req service.QuotesExportRequest, sellerID int64) (string, error)
}

type Handler struct {
	quotes     QuoteService
	exporter   QuoteExporter
	exportList ExportListService
}

func NewHandler(quotes QuoteService, exporter QuoteExporter, exportList ExportListService) *Handler {
	return &Handler{
		quotes:     quotes,
		exporter:   exporter,
		exportList: exportList,
	}
}

func (h *Handler) InitRouter() *chi.Mux {
	return h.InitRouterWithAuth(nil)
}

func (h *Handler) InitRouterWithAuth(authMiddleware func(http.Handler) http.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middleware.Timeout(60*time.Second),
	)

	if authMiddleware != nil {
		r.Use(authMiddleware)
	}

	r.Get("/rates", h.getRates)

	r.Route("/quotes", func(r chi.Router) {
		r.Post("/simulate", h.simulate)
		r.Post("/club", h.clubQuote)
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.listProducts)
		r.Get("/{id}", h.getProduct)
		r.Get("/{id}/quote", h.productQuote)
	})

	r.Route("/export", func(r chi.Router) {
		r.Get("/", h.listExports)
		r.Get("/{export_id}", h.getExport)
		r.Post("/quotes", h.exportQuotes)
	})

	return r
}

func writeRequestError(w http.ResponseWriter, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		ErrorValidation(w, verr)
		return
	}
	ErrorBadRequest(w, err.Error())
}
