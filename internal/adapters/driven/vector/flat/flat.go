// Package flat provides the local fallback vector backend: exact
// inner-product search over L2-normalised vectors, persisted per
// namespace on disk.
//
// Vectors live in an arena with an id-to-slot index. Updates tombstone
// the old slot and append a new one; deletes only tombstone. The arena
// is compacted once tombstones outnumber live slots, which avoids a
// full rebuild on every delete while keeping queries a simple linear
// scan. This is exact search, acceptable at the small and medium
// namespace sizes the fallback is meant for.
package flat

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/citeview-labs/citeview-cli/internal/core/domain"
	"github.com/citeview-labs/citeview-cli/internal/core/ports/driven"
	"github.com/citeview-labs/citeview-cli/internal/logger"
)

// BackendName identifies this backend in logs and stats.
const BackendName = "flat"

// Ensure Index implements the interface.
var _ driven.VectorBackend = (*Index)(nil)

// Index is the local flat vector backend.
type Index struct {
	mu         sync.Mutex
	dataDir    string
	dimensions int
	namespaces map[string]*namespace
}

// namespace holds one namespace's arena.
type namespace struct {
	IDs      []string         `json:"ids"`
	Vectors  [][]float32      `json:"vectors"`
	Metadata []map[string]any `json:"metadata"`
	Deleted  []bool           `json:"deleted"`
	slots    map[string]int   // id -> slot, live entries only
	dead     int
}

// NewIndex creates a flat index persisting under dataDir.
// If dataDir is empty, defaults to ~/.citeview/data/vectors.
func NewIndex(dataDir string, dimensions int) (*Index, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".citeview", "data", "vectors")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("create vector data directory: %w", err)
	}

	return &Index{
		dataDir:    dataDir,
		dimensions: dimensions,
		namespaces: make(map[string]*namespace),
	}, nil
}

// Name identifies the backend.
func (x *Index) Name() string { return BackendName }

// Available always reports true: the local index is initialisable on
// any filesystem.
func (x *Index) Available(_ context.Context) bool { return true }

// Upsert writes records into a namespace. Existing IDs have their old
// slot tombstoned and a fresh slot appended, so both vector and
// metadata are replaced.
func (x *Index) Upsert(_ context.Context, nsName string, records []domain.VectorRecord) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	ns, err := x.load(nsName)
	if err != nil {
		return err
	}

	for _, rec := range records {
		if len(rec.Values) != x.dimensions {
			return fmt.Errorf("%w: vector %s has %d dimensions, index expects %d",
				domain.ErrInvalidInput, rec.ID, len(rec.Values), x.dimensions)
		}

		if slot, ok := ns.slots[rec.ID]; ok {
			ns.Deleted[slot] = true
			ns.dead++
		}

		ns.IDs = append(ns.IDs, rec.ID)
		ns.Vectors = append(ns.Vectors, normalise(rec.Values))
		ns.Metadata = append(ns.Metadata, rec.Metadata)
		ns.Deleted = append(ns.Deleted, false)
		ns.slots[rec.ID] = len(ns.IDs) - 1
	}

	x.maybeCompact(ns)
	return x.save(nsName, ns)
}

// Query returns the topK most similar records by inner product over
// normalised vectors, best first.
func (x *Index) Query(
	_ context.Context, nsName string, vector []float32, topK int, filter driven.QueryFilter,
) ([]domain.RetrievalResult, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if len(vector) != x.dimensions {
		return nil, fmt.Errorf("%w: query vector has %d dimensions, index expects %d",
			domain.ErrInvalidInput, len(vector), x.dimensions)
	}

	ns, err := x.load(nsName)
	if err != nil {
		return nil, err
	}
	if topK <= 0 || len(ns.IDs) == 0 {
		return nil, nil
	}

	q := normalise(vector)

	results := make([]domain.RetrievalResult, 0, topK)
	for slot, id := range ns.IDs {
		if ns.Deleted[slot] {
			continue
		}
		meta := ns.Metadata[slot]
		if !matches(meta, filter) {
			continue
		}
		results = append(results, domain.RetrievalResult{
			ChunkID:  id,
			Score:    dot(q, ns.Vectors[slot]),
			Metadata: meta,
		})
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// DeleteByDocument tombstones all vectors whose metadata names the
// document and compacts when the arena is mostly dead.
func (x *Index) DeleteByDocument(_ context.Context, nsName, documentID string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	ns, err := x.load(nsName)
	if err != nil {
		return err
	}

	changed := false
	for slot := range ns.IDs {
		if ns.Deleted[slot] {
			continue
		}
		if id, ok := ns.Metadata[slot]["document_id"].(string); ok && id == documentID {
			ns.Deleted[slot] = true
			ns.dead++
			delete(ns.slots, ns.IDs[slot])
			changed = true
		}
	}
	if !changed {
		return nil
	}

	x.maybeCompact(ns)
	return x.save(nsName, ns)
}

// DeleteNamespace removes an entire namespace, memory and disk.
func (x *Index) DeleteNamespace(_ context.Context, nsName string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	delete(x.namespaces, nsName)
	if err := os.Remove(x.path(nsName)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove namespace file: %w", err)
	}
	return nil
}

// Stats reports live vector counts per namespace, including
// namespaces persisted on disk but not yet loaded.
func (x *Index) Stats(_ context.Context) domain.IndexStats {
	x.mu.Lock()
	defer x.mu.Unlock()

	counts := make(map[string]int)

	entries, err := os.ReadDir(x.dataDir)
	if err == nil {
		for _, e := range entries {
			name, ok := strings.CutSuffix(e.Name(), ".json")
			if !ok {
				continue
			}
			if ns, err := x.load(name); err == nil {
				counts[name] = len(ns.IDs) - ns.dead
			}
		}
	}
	for name, ns := range x.namespaces {
		counts[name] = len(ns.IDs) - ns.dead
	}

	return domain.IndexStats{Backend: BackendName, Available: true, VectorCounts: counts}
}

// Close is a no-op: state is persisted after every mutation.
func (x *Index) Close() error { return nil }

// load returns the namespace, reading it from disk on first access.
// Caller must hold the mutex: load mutates the namespace cache.
func (x *Index) load(nsName string) (*namespace, error) {
	if ns, ok := x.namespaces[nsName]; ok {
		return ns, nil
	}

	ns := &namespace{slots: make(map[string]int)}

	data, err := os.ReadFile(x.path(nsName))
	switch {
	case os.IsNotExist(err):
		// Fresh namespace.
	case err != nil:
		return nil, fmt.Errorf("read namespace %s: %w", nsName, err)
	default:
		if err := json.Unmarshal(data, ns); err != nil {
			return nil, fmt.Errorf("decode namespace %s: %w", nsName, err)
		}
		ns.slots = make(map[string]int, len(ns.IDs))
		for slot, id := range ns.IDs {
			if ns.Deleted[slot] {
				ns.dead++
				continue
			}
			ns.slots[id] = slot
		}
	}

	x.namespaces[nsName] = ns
	return ns, nil
}

// save persists a namespace to disk.
func (x *Index) save(nsName string, ns *namespace) error {
	data, err := json.Marshal(ns)
	if err != nil {
		return fmt.Errorf("encode namespace %s: %w", nsName, err)
	}
	if err := os.WriteFile(x.path(nsName), data, 0600); err != nil {
		return fmt.Errorf("write namespace %s: %w", nsName, err)
	}
	return nil
}

// maybeCompact rebuilds the arena once tombstones outnumber live
// slots.
func (x *Index) maybeCompact(ns *namespace) {
	if ns.dead == 0 || ns.dead*2 <= len(ns.IDs) {
		return
	}

	live := len(ns.IDs) - ns.dead
	ids := make([]string, 0, live)
	vectors := make([][]float32, 0, live)
	metadata := make([]map[string]any, 0, live)

	for slot := range ns.IDs {
		if ns.Deleted[slot] {
			continue
		}
		ids = append(ids, ns.IDs[slot])
		vectors = append(vectors, ns.Vectors[slot])
		metadata = append(metadata, ns.Metadata[slot])
	}

	ns.IDs = ids
	ns.Vectors = vectors
	ns.Metadata = metadata
	ns.Deleted = make([]bool, len(ids))
	ns.dead = 0
	ns.slots = make(map[string]int, len(ids))
	for slot, id := range ids {
		ns.slots[id] = slot
	}

	logger.Debug("Compacted flat namespace to %d vectors", len(ids))
}

// path maps a namespace to its file, sanitising separators.
func (x *Index) path(nsName string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, nsName)
	if safe == "" {
		safe = "default"
	}
	return filepath.Join(x.dataDir, safe+".json")
}

// matches applies a metadata filter. String slices in the filter match
// when the stored value is any member.
func matches(meta map[string]any, filter driven.QueryFilter) bool {
	for key, want := range filter {
		got, ok := meta[key]
		if !ok {
			return false
		}
		switch w := want.(type) {
		case []string:
			found := false
			for _, candidate := range w {
				if got == candidate {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		default:
			if got != want {
				return false
			}
		}
	}
	return true
}

// normalise returns the unit vector, leaving zero vectors unchanged.
func normalise(v []float32) []float32 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		out := make([]float32, len(v))
		copy(out, v)
		return out
	}

	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(float64(f) / norm)
	}
	return out
}

// dot computes the inner product of two equal-length vectors.
func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
