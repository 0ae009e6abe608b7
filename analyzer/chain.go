package analyzer

import "github.com/zero-day-ai/orgaudit/hierarchy"

// ChainResult is the outcome of walking one record's reporting chain.
type ChainResult struct {
	// Depth is the number of superior hops to a root.
	Depth int

	// Broken is true if the walk stopped at a reference to a missing
	// record. The hop onto the missing id is counted.
	Broken bool

	// Cyclic is true if the chain never reaches a root. Depth is zero.
	Cyclic bool
}

// chainWalker resolves reporting chains with memoization so every record
// is walked at most once across a pass.
type chainWalker struct {
	store *hierarchy.Store
	memo  map[int]ChainResult

	// maxHops caps a single walk at the number of records.
	maxHops int

	// onDangling is called once per record whose superior id is missing.
	onDangling func(holder hierarchy.Record, missing int)
}

func newChainWalker(store *hierarchy.Store, onDangling func(hierarchy.Record, int)) *chainWalker {
	if onDangling == nil {
		onDangling = func(hierarchy.Record, int) {}
	}
	return &chainWalker{
		store:      store,
		memo:       make(map[int]ChainResult, store.Len()),
		maxHops:    store.Len(),
		onDangling: onDangling,
	}
}

// resolve returns the chain result for the record with the given id,
// which must exist in the store.
func (w *chainWalker) resolve(id int) ChainResult {
	var (
		path   []int
		onPath = make(map[int]struct{})
		base   ChainResult
		cur    = id
	)

	for {
		if known, ok := w.memo[cur]; ok {
			base = known
			break
		}
		if _, seen := onPath[cur]; seen || len(path) > w.maxHops {
			base = ChainResult{Cyclic: true}
			break
		}

		rec, _ := w.store.Get(cur)
		superiorID, ok := rec.Superior.Get()
		if !ok {
			base = ChainResult{}
			w.memo[cur] = base
			break
		}

		path = append(path, cur)
		onPath[cur] = struct{}{}

		if _, exists := w.store.Get(superiorID); !exists {
			w.onDangling(rec, superiorID)
			base = ChainResult{Broken: true}
			break
		}
		cur = superiorID
	}

	for i := len(path) - 1; i >= 0; i-- {
		if !base.Cyclic {
			base.Depth++
		}
		w.memo[path[i]] = base
	}
	return w.memo[id]
}

// ResolveChains walks every record in store and returns its chain result
// keyed by record id. Roots have depth zero.
func ResolveChains(store *hierarchy.Store) map[int]ChainResult {
	w := newChainWalker(store, nil)
	for _, rec := range store.All() {
		w.resolve(rec.ID)
	}
	return w.memo
}
