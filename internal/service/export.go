package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"
)

const (
	exportSetKey  = "export_ids"
	exportTTL     = 20 * time.Minute
	exportKeyBase = "exports:"
)

var ErrExportNotFound = errors.New("export not found")

// StatusStore is the key/value + set subset of the redis client used for
// export bookkeeping.
type StatusStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	SAdd(ctx context.Context, key string, members ...any) error
	SMembers(ctx context.Context, key string) ([]string, error)
}

type ExportStatus struct {
	Key      string    `json:"key"`
	Type     string    `json:"type"`
	SellerID int64     `json:"seller_id"`
	Filters  any       `json:"filters"`
	Progress float64   `json:"progress"`
	FileURL  *string   `json:"file_url"`
	Error    *string   `json:"error"`
	Created  time.Time `json:"created_at"`
}

func saveExportStatus(ctx context.Context, store StatusStore, st *ExportStatus) error {
	if store == nil {
		return nil
	}

	data, err := json.Marshal(st)
	if err != nil {
		return err
	}

	if err := store.Set(ctx, st.Key, string(data), exportTTL); err != nil {
		return err
	}

	return store.SAdd(ctx, exportSetKey, st.Key)
}

type ExportView struct {
	Key       string  `json:"key"`
	Type      string  `json:"type"`
	SellerID  int64   `json:"seller_id"`
	Progress  float64 `json:"progress"`
	FileURL   *string `json:"file_url"`
	Error     *string `json:"error"`
	Filters   any     `json:"filters"`
	CreatedAt string  `json:"created_at"`
}

func viewOfStatus(st ExportStatus, now time.Time) ExportView {
	return ExportView{
		Key:       st.Key,
		Type:      st.Type,
		SellerID:  st.SellerID,
		Progress:  st.Progress,
		FileURL:   st.FileURL,
		Error:     st.Error,
		Filters:   st.Filters,
		CreatedAt: humanizePtBRAgo(st.Created, now),
	}
}

type ExportService struct {
	store StatusStore
	now   func() time.Time
}

func NewExportService(store StatusStore) *ExportService {
	return &ExportService{
		store: store,
		now:   time.Now,
	}
}

// GetExports lists the seller's exports, newest first. Expired entries still
// named in the index set are skipped.
func (s *ExportService) GetExports(ctx context.Context, sellerID int64) ([]ExportView, error) {
	if s.store == nil {
		return nil, errors.New("status store not configured")
	}

	keys, err := s.store.SMembers(ctx, exportSetKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get export keys: %w", err)
	}

	var statuses []ExportStatus
	for _, key := range keys {
		data, err := s.store.Get(ctx, key)
		if err != nil {
			continue
		}

		var status ExportStatus
		if err := json.Unmarshal([]byte(data), &status); err != nil {
			continue
		}

		if status.SellerID == sellerID {
			statuses = append(statuses, status)
		}
	}

	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Created.After(statuses[j].Created)
	})

	now := s.now()
	exports := make([]ExportView, 0, len(statuses))
	for _, status := range statuses {
		exports = append(exports, viewOfStatus(status, now))
	}

	return exports, nil
}

func (s *ExportService) GetExport(ctx context.Context, exportID string, sellerID int64) (*ExportView, error) {
	if s.store == nil {
		return nil, errors.New("status store not configured")
	}

	data, err := s.store.Get(ctx, exportID)
	if err != nil {
		return nil, ErrExportNotFound
	}

	var status ExportStatus
	if err := json.Unmarshal([]byte(data), &status); err != nil {
		return nil, fmt.Errorf("failed to parse export status: %w", err)
	}

	if status.SellerID != sellerID {
		return nil, ErrExportNotFound
	}

	view := viewOfStatus(status, s.now())
	return &view, nil
}

func humanizePtBRAgo(t, now time.Time) string {
	if t.After(now) {
		return "agora mesmo"
	}

	minutes := int(now.Sub(t).Minutes())
	if minutes < 1 {
		return "agora mesmo"
	}
	if minutes < 60 {
		return fmt.Sprintf("há %d %s", minutes, ptPlural(minutes, "minuto", "minutos"))
	}
	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("há %d %s", hours, ptPlural(hours, "hora", "horas"))
	}
	days := hours / 24
	if days < 30 {
		return fmt.Sprintf("há %d %s", days, ptPlural(days, "dia", "dias"))
	}
	return t.Format("02/01/2006 15:04")
}

func ptPlural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
