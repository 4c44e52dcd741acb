package registry

import (
	"errors"
	"io/fs"
	"log/slog"
	"sort"
	"sync/atomic"

	"github.com/dgallion1/edufin/internal/facility"
	"github.com/dgallion1/edufin/internal/ledger"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Index maps (category, identifier) to enrollment. It is never modified
// after BuildIndex returns; publish a new Index instead of updating one.
type Index struct {
	counts map[string]float64
	names  []string
	keys   []string
	source []Row

	// Overwrites counts entries replaced by a later row with the same key.
	Overwrites int
}

// BuildIndex classifies every row that carries an enrollment count. Rows
// with the same (category, identifier) overwrite earlier ones.
func BuildIndex(rows []Row) *Index {
	ix := &Index{counts: make(map[string]float64)}
	for _, r := range rows {
		n, ok := r.Enrollment().Get()
		if !ok {
			continue
		}
		id := facility.Classify(r.Name)
		key := id.LookupKey()
		if _, dup := ix.counts[key]; dup {
			ix.Overwrites++
		}
		ix.counts[key] = n
		ix.names = append(ix.names, r.Name)
		ix.keys = append(ix.keys, id.Key)
	}
	return ix
}

// Len returns the number of distinct keys.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.counts)
}

// Match returns the enrollment registered for name. A nil index matches
// nothing.
func (ix *Index) Match(name string) ledger.Value {
	if ix == nil {
		return ledger.None
	}
	n, ok := ix.counts[facility.Classify(name).LookupKey()]
	if !ok {
		return ledger.None
	}
	return ledger.Some(n)
}

// Source returns every row of the loaded register, before filtering. It is
// empty for an index built directly with BuildIndex.
func (ix *Index) Source() []Row {
	if ix == nil {
		return nil
	}
	return ix.source
}

// Suggest lists up to limit register names that fuzzily contain name.
// It only helps a person diagnose a failed Match.
func (ix *Index) Suggest(name string, limit int) []string {
	if ix == nil || limit <= 0 {
		return nil
	}
	ranks := fuzzy.RankFindNormalizedFold(facility.NormalizeKey(name), ix.keys)
	sort.Stable(ranks)

	var out []string
	seen := make(map[string]bool)
	for _, r := range ranks {
		n := ix.names[r.OriginalIndex]
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
		if len(out) == limit {
			break
		}
	}
	return out
}

// LoadIndex loads, filters and indexes a register file. A missing file
// gives an empty index so a run can continue without enrollment data.
func LoadIndex(path string, filter Filter, log *slog.Logger) (*Index, error) {
	if log == nil {
		log = slog.Default()
	}
	rows, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn("registry file not found, enrollment unavailable", "path", path)
		return BuildIndex(nil), nil
	}
	if err != nil {
		return nil, err
	}

	kept := filter.Apply(rows)
	ix := BuildIndex(kept)
	ix.source = rows
	log.Info("registry loaded",
		"path", path,
		"rows", len(rows),
		"filtered", len(kept),
		"entries", ix.Len(),
	)
	if ix.Overwrites > 0 {
		log.Warn("registry has duplicate facility keys, last row wins", "overwrites", ix.Overwrites)
	}
	return ix, nil
}

// Ref publishes the current Index to concurrent readers. A reload builds a
// fresh Index and swaps it in with Store.
type Ref struct {
	p atomic.Pointer[Index]
}

// NewRef returns a Ref holding ix.
func NewRef(ix *Index) *Ref {
	r := &Ref{}
	r.p.Store(ix)
	return r
}

// Load returns the published index, possibly nil.
func (r *Ref) Load() *Index {
	if r == nil {
		return nil
	}
	return r.p.Load()
}

// Store publishes ix.
func (r *Ref) Store(ix *Index) {
	r.p.Store(ix)
}
