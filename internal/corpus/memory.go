package corpus

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/hyperjump/tenin/internal/models"
	"github.com/hyperjump/tenin/internal/vector"
)

// MemoryStore is an in-memory product corpus using brute-force cosine search.
// Product records are immutable once loaded; Replace swaps the whole set
// atomically on catalog reload.
type MemoryStore struct {
	mu       sync.RWMutex
	products []*models.Product
	byID     map[string]*models.Product
}

// NewMemoryStore creates an empty corpus.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]*models.Product)}
}

// Replace swaps the corpus contents. Insertion order of products is the
// tie-break order for searches and the order of full scans.
func (m *MemoryStore) Replace(products []*models.Product) {
	byID := make(map[string]*models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	m.mu.Lock()
	m.products = products
	m.byID = byID
	m.mu.Unlock()
}

// Search returns up to topK records passing the filters, ordered by cosine
// similarity to the query embedding. The sort is stable so identical inputs
// always produce identical ordering.
func (m *MemoryStore) Search(ctx context.Context, embedding []float32, topK int, filters *Filters) ([]*models.Product, error) {
	if topK <= 0 {
		return nil, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	type scored struct {
		product *models.Product
		score   float64
	}
	scores := make([]scored, 0, len(m.products))
	for _, p := range m.products {
		if !filters.Match(p) {
			continue
		}
		scores = append(scores, scored{product: p, score: vector.CosineSimilarity(embedding, p.Embedding)})
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	if topK > len(scores) {
		topK = len(scores)
	}
	out := make([]*models.Product, topK)
	for i := 0; i < topK; i++ {
		out[i] = scores[i].product
	}
	return out, nil
}

// ScanAll returns every record in insertion order.
func (m *MemoryStore) ScanAll(ctx context.Context) ([]*models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.Product, len(m.products))
	copy(out, m.products)
	return out, nil
}

// Get returns one record by ID.
func (m *MemoryStore) Get(ctx context.Context, id string) (*models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("product %q not found", id)
	}
	return p, nil
}

// Count returns the number of records.
func (m *MemoryStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.products)
}

// SaveSnapshot persists the record embeddings so a restart does not re-embed
// the catalog. Format: dimension (4), n (4), then per record: idLen (4),
// id bytes, vector (dimension*4 bytes). Records without embeddings are
// skipped.
func (m *MemoryStore) SaveSnapshot(path string) error {
	if path == "" {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var dims int
	embedded := make([]*models.Product, 0, len(m.products))
	for _, p := range m.products {
		if len(p.Embedding) == 0 {
			continue
		}
		if dims == 0 {
			dims = len(p.Embedding)
		}
		if len(p.Embedding) != dims {
			return fmt.Errorf("inconsistent embedding dimension for %q: got %d, expected %d", p.ID, len(p.Embedding), dims)
		}
		embedded = append(embedded, p)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	defer f.Close()

	if err := binary.Write(f, binary.LittleEndian, uint32(dims)); err != nil {
		return fmt.Errorf("write dimensions: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, uint32(len(embedded))); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	for _, p := range embedded {
		idBytes := []byte(p.ID)
		if err := binary.Write(f, binary.LittleEndian, uint32(len(idBytes))); err != nil {
			return fmt.Errorf("write id len: %w", err)
		}
		if _, err := f.Write(idBytes); err != nil {
			return fmt.Errorf("write id: %w", err)
		}
		if _, err := f.Write(float32SliceToBytes(p.Embedding)); err != nil {
			return fmt.Errorf("write vector: %w", err)
		}
	}
	return nil
}

// LoadSnapshot attaches persisted embeddings to the already-loaded records by
// ID. A missing file is not an error; snapshot entries for unknown IDs are
// ignored. Returns the number of records that received an embedding.
func (m *MemoryStore) LoadSnapshot(path string) (int, error) {
	if path == "" {
		return 0, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("open snapshot file: %w", err)
	}
	defer f.Close()

	var dims, n uint32
	if err := binary.Read(f, binary.LittleEndian, &dims); err != nil {
		return 0, fmt.Errorf("read dimensions: %w", err)
	}
	if err := binary.Read(f, binary.LittleEndian, &n); err != nil {
		return 0, fmt.Errorf("read count: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	attached := 0
	buf := make([]byte, int(dims)*4)
	for i := uint32(0); i < n; i++ {
		var idLen uint32
		if err := binary.Read(f, binary.LittleEndian, &idLen); err != nil {
			return attached, fmt.Errorf("read id len: %w", err)
		}
		idBytes := make([]byte, idLen)
		if _, err := f.Read(idBytes); err != nil {
			return attached, fmt.Errorf("read id: %w", err)
		}
		if _, err := f.Read(buf); err != nil {
			return attached, fmt.Errorf("read vector: %w", err)
		}
		if p, ok := m.byID[string(idBytes)]; ok {
			p.Embedding = bytesToFloat32Slice(buf)
			attached++
		}
	}
	return attached, nil
}

func float32SliceToBytes(s []float32) []byte {
	const size = 4
	out := make([]byte, len(s)*size)
	for i, v := range s {
		binary.LittleEndian.PutUint32(out[i*size:(i+1)*size], math.Float32bits(v))
	}
	return out
}

func bytesToFloat32Slice(b []byte) []float32 {
	const size = 4
	out := make([]float32, len(b)/size)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*size : (i+1)*size]))
	}
	return out
}
