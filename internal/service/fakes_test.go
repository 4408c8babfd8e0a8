package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Sant0sss/jpr-iphone-stock/internal/domain"
	"github.com/Sant0sss/jpr-iphone-stock/internal/repository"
)

type fakeProducts struct {
	items   []domain.Product
	err     error
	filters []repository.ProductsFilter
}

func (f *fakeProducts) List(_ context.Context, filter repository.ProductsFilter) ([]domain.Product, error) {
	f.filters = append(f.filters, filter)
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

func (f *fakeProducts) FindByID(_ context.Context, id string) (*domain.Product, error) {
	for _, p := range f.items {
		if p.ID == id {
			p := p
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

type memoryStore struct {
	mu   sync.Mutex
	data map[string]string
	sets map[string]map[string]struct{}
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		data: make(map[string]string),
		sets: make(map[string]map[string]struct{}),
	}
}

func (m *memoryStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := value.(string)
	if !ok {
		return errors.New("memory store only keeps strings")
	}
	m.data[key] = s
	return nil
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", errors.New("nil")
	}
	return v, nil
}

func (m *memoryStore) SAdd(_ context.Context, key string, members ...any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sets[key] == nil {
		m.sets[key] = make(map[string]struct{})
	}
	for _, member := range members {
		m.sets[key][member.(string)] = struct{}{}
	}
	return nil
}

func (m *memoryStore) SMembers(_ context.Context, key string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for member := range m.sets[key] {
		out = append(out, member)
	}
	return out, nil
}

type fakeStorage struct {
	mu    sync.Mutex
	files map[string][]byte
	err   error
}

func (s *fakeStorage) Put(_ context.Context, fileName string, data []byte) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.files == nil {
		s.files = make(map[string][]byte)
	}
	s.files[fileName] = data
	return "/files/" + fileName, nil
}

func (s *fakeStorage) only() (string, []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, data := range s.files {
		return name, data
	}
	return "", nil
}

type notification struct {
	kind     string
	progress float64
	stage    string
	message  string
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []notification
}

func (n *fakeNotifier) add(e notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

func (n *fakeNotifier) snapshot() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification(nil), n.events...)
}

func (n *fakeNotifier) NotifyExportProgress(_ context.Context, _ int64, _ string, progress float64, stage string) error {
	n.add(notification{kind: "progress", progress: progress, stage: stage})
	return nil
}

func (n *fakeNotifier) NotifyExportComplete(_ context.Context, _ int64, _ string, _ string, _ string) error {
	n.add(notification{kind: "complete"})
	return nil
}

func (n *fakeNotifier) NotifyExportFailed(_ context.Context, _ int64, _ string, msg string) error {
	n.add(notification{kind: "failed", message: msg})
	return nil
}

func strp(s string) *string { return &s }

func floatp(f float64) *float64 { return &f }
