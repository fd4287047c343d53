package core

import (
	"context"
	"sync"
)

// memStore is an in-memory Store enforcing the same uniqueness contract as
// the SQL drivers. Hooks let tests simulate a concurrent writer.
type memStore struct {
	mu     sync.Mutex
	nextID int64
	byCode map[string]Certificate

	insertOneCalls  int
	insertManyCalls int

	// beforeWrite runs (unlocked) right before an insert is applied.
	beforeWrite func()
	existsErr   error
}

func newMemStore() *memStore {
	return &memStore{byCode: make(map[string]Certificate)}
}

func (m *memStore) InsertOne(ctx context.Context, c Certificate) (int64, error) {
	if m.beforeWrite != nil {
		m.beforeWrite()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insertOneCalls++

	if _, ok := m.byCode[c.Code]; ok {
		return 0, ErrDuplicateCode
	}
	m.nextID++
	c.ID = m.nextID
	m.byCode[c.Code] = c
	return c.ID, nil
}

func (m *memStore) InsertMany(ctx context.Context, certs []Certificate) (int, error) {
	if m.beforeWrite != nil {
		m.beforeWrite()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insertManyCalls++

	// All or nothing, like a single transaction.
	batch := make(map[string]struct{}, len(certs))
	for _, c := range certs {
		if _, ok := m.byCode[c.Code]; ok {
			return 0, ErrDuplicateCode
		}
		if _, ok := batch[c.Code]; ok {
			return 0, ErrDuplicateCode
		}
		batch[c.Code] = struct{}{}
	}
	for _, c := range certs {
		m.nextID++
		c.ID = m.nextID
		m.byCode[c.Code] = c
	}
	return len(certs), nil
}

func (m *memStore) FindByCode(ctx context.Context, code string) (Certificate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.byCode[code]
	if !ok {
		return Certificate{}, ErrNotFound
	}
	return c, nil
}

func (m *memStore) ExistsByCode(ctx context.Context, code string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.byCode[code]
	return ok, nil
}

// put stores c directly, bypassing hooks and counters.
func (m *memStore) put(c Certificate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	c.ID = m.nextID
	m.byCode[c.Code] = c
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byCode)
}

func strPtr(s string) *string { return &s }

// payload builds a complete payload.
func payload(name, code, image string) CertificatePayload {
	return CertificatePayload{Name: strPtr(name), Code: strPtr(code), ImageData: strPtr(image)}
}
