package service

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/Sant0sss/jpr-iphone-stock/internal/domain"
	"github.com/Sant0sss/jpr-iphone-stock/internal/pricing"
	"github.com/Sant0sss/jpr-iphone-stock/internal/repository"
)

const (
	quotesExportType = "quotes"
	quotesSheet      = "Parcelamento"
	brlNumFmt        = `"R$" #,##0.00`
)

// ExportStorage persists a finished workbook and returns a URL to download it.
type ExportStorage interface {
	Put(ctx context.Context, fileName string, data []byte) (string, error)
}

type ExportNotifier interface {
	NotifyExportProgress(ctx context.Context, sellerID int64, exportID string, progress float64, stage string) error
	NotifyExportComplete(ctx context.Context, sellerID int64, exportID string, url string, filename string) error
	NotifyExportFailed(ctx context.Context, sellerID int64, exportID string, errMsg string) error
}

type QuotesExportRequest struct {
	ProductIDs []string
	Search     string
	Stock      string
	Channel    pricing.PaymentChannel
	Brand      pricing.CardBrand
}

func (r QuotesExportRequest) filter() repository.ProductsFilter {
	return repository.ProductsFilter{
		Search: r.Search,
		Stock:  r.Stock,
		IDs:    r.ProductIDs,
	}
}

func (r QuotesExportRequest) filtersMap() map[string]any {
	m := map[string]any{
		"channel": r.Channel,
		"brand":   nil,
		"search":  nil,
		"stock":   nil,
	}
	if r.Brand != "" {
		m["brand"] = r.Brand
	}
	if r.Search != "" {
		m["search"] = r.Search
	}
	if r.Stock != "" {
		m["stock"] = r.Stock
	}
	if len(r.ProductIDs) > 0 {
		m["product_ids"] = r.ProductIDs
	}
	return m
}

type quoteColumn struct {
	Header string
	Money  bool
	Value  func(p domain.Product, q pricing.DualQuote) any
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

var quoteColumns = []quoteColumn{
	{Header: "Produto", Value: func(p domain.Product, _ pricing.DualQuote) any { return p.Label() }},
	{Header: "Cor", Value: func(p domain.Product, _ pricing.DualQuote) any { return strPtr(p.Colors) }},
	{Header: "Estoque", Value: func(p domain.Product, _ pricing.DualQuote) any { return strPtr(p.Stock) }},
	{Header: "Parcelas", Value: func(_ domain.Product, q pricing.DualQuote) any { return q.Club.Installments }},
	{Header: "Taxa (%)", Value: func(_ domain.Product, q pricing.DualQuote) any { return q.Club.Rate }},
	{Header: "Valor normal", Money: true, Value: func(_ domain.Product, q pricing.DualQuote) any { return roundMoney(q.NormalPrice) }},
	{Header: "Parcela normal", Money: true, Value: func(_ domain.Product, q pricing.DualQuote) any { return roundMoney(q.Normal.PerInstallment) }},
	{Header: "Total normal", Money: true, Value: func(_ domain.Product, q pricing.DualQuote) any { return roundMoney(q.Normal.TotalPayable) }},
	{Header: "Valor membro", Money: true, Value: func(_ domain.Product, q pricing.DualQuote) any { return roundMoney(q.ClubPrice) }},
	{Header: "Parcela membro", Money: true, Value: func(_ domain.Product, q pricing.DualQuote) any { return roundMoney(q.Club.PerInstallment) }},
	{Header: "Total membro", Money: true, Value: func(_ domain.Product, q pricing.DualQuote) any { return roundMoney(q.Club.TotalPayable) }},
	{Header: "Economia", Money: true, Value: func(_ domain.Product, q pricing.DualQuote) any { return roundMoney(q.Savings) }},
}

func strPtr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

type QuoteExportService struct {
	repo    ProductRepository
	engine  *pricing.Engine
	store   StatusStore
	storage ExportStorage
	ws      ExportNotifier
}

func NewQuoteExportService(
	repo ProductRepository,
	engine *pricing.Engine,
	store StatusStore,
	storage ExportStorage,
	ws ExportNotifier,
) *QuoteExportService {
	return &QuoteExportService{
		repo:    repo,
		engine:  engine,
		store:   store,
		storage: storage,
		ws:      ws,
	}
}

// StartQuotesExport registers the export and builds the workbook in the
// background. The returned id is the status key.
func (s *QuoteExportService) StartQuotesExport(ctx context.Context, req QuotesExportRequest, sellerID int64) (string, error) {
	exportID := exportKeyBase + uuid.NewString()

	status := &ExportStatus{
		Key:      exportID,
		Type:     quotesExportType,
		SellerID: sellerID,
		Filters:  req.filtersMap(),
		Created:  time.Now(),
	}

	if err := saveExportStatus(ctx, s.store, status); err != nil {
		return "", fmt.Errorf("save export status: %w", err)
	}

	go s.runQuotesExport(context.Background(), status, req)

	return exportID, nil
}

func (s *QuoteExportService) runQuotesExport(ctx context.Context, status *ExportStatus, req QuotesExportRequest) {
	products, err := s.repo.List(ctx, req.filter())
	if err != nil {
		s.fail(ctx, status, fmt.Errorf("list products: %w", err))
		return
	}

	f, err := s.buildWorkbook(products, req, status.SellerID, func(done, total int) {
		progress := math.Round(float64(done) / float64(total) * 100)
		// 100 is reserved for when the file URL is ready
		if progress >= 100 {
			progress = 95
		}
		status.Progress = progress

		_ = saveExportStatus(ctx, s.store, status)
		s.notifyProgress(ctx, status, "generating")
	})
	if err != nil {
		s.fail(ctx, status, err)
		return
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.fail(ctx, status, fmt.Errorf("write workbook: %w", err))
		return
	}

	fileName := fmt.Sprintf("parcelamento_%s.xlsx", time.Now().Format("20060102_150405"))

	status.Progress = 95
	_ = saveExportStatus(ctx, s.store, status)
	s.notifyProgress(ctx, status, "uploading")

	url, err := s.storage.Put(ctx, fileName, buf.Bytes())
	if err != nil {
		s.fail(ctx, status, fmt.Errorf("store workbook: %w", err))
		return
	}

	status.FileURL = &url
	status.Progress = 100
	_ = saveExportStatus(ctx, s.store, status)

	if s.ws != nil {
		_ = s.ws.NotifyExportProgress(ctx, status.SellerID, status.Key, 100, "ready")
		_ = s.ws.NotifyExportComplete(ctx, status.SellerID, status.Key, url, fileName)
	}

	log.Printf("[EXPORT] %s ready: %d products", status.Key, len(products))
}

func (s *QuoteExportService) notifyProgress(ctx context.Context, status *ExportStatus, stage string) {
	if s.ws != nil {
		_ = s.ws.NotifyExportProgress(ctx, status.SellerID, status.Key, status.Progress, stage)
	}
}

func (s *QuoteExportService) fail(ctx context.Context, status *ExportStatus, err error) {
	log.Printf("[EXPORT] %s failed: %v", status.Key, err)

	msg := err.Error()
	status.Error = &msg
	_ = saveExportStatus(ctx, s.store, status)

	if s.ws != nil {
		_ = s.ws.NotifyExportFailed(ctx, status.SellerID, status.Key, msg)
	}
}

// buildWorkbook writes one row per product and installment count.
// onProgress is called after each product.
func (s *QuoteExportService) buildWorkbook(
	products []domain.Product,
	req QuotesExportRequest,
	sellerID int64,
	onProgress func(done, total int),
) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), quotesSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	_ = f.SetDocProps(&excelize.DocProperties{
		Creator: fmt.Sprintf("seller_%d", sellerID),
		Title:   "Parcelamento - " + req.Channel.Label(),
	})

	numFmt := brlNumFmt
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return nil, fmt.Errorf("money style: %w", err)
	}

	for i, col := range quoteColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(quotesSheet, cell, col.Header)
		if col.Money {
			name, _ := excelize.ColumnNumberToName(i + 1)
			_ = f.SetColStyle(quotesSheet, name, moneyStyle)
		}
	}

	total := len(products)
	rowIdx := 2
	for i, p := range products {
		table := s.engine.ComposeTable(pricing.ScenarioInput{
			ClubPrice:          p.ClubPrice(),
			Channel:            req.Channel,
			Brand:              req.Brand,
			CatalogNormalPrice: p.NormalPrice,
		})

		for _, q := range table {
			for colIdx, col := range quoteColumns {
				cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx)
				_ = f.SetCellValue(quotesSheet, cell, col.Value(p, q))
			}
			rowIdx++
		}

		if onProgress != nil {
			onProgress(i+1, total)
		}
	}

	return f, nil
}
