package snapimport

import (
	"context"
	"fmt"

	"github.com/Iceblockp/mobile-pos-sub001/internal/id"
	"github.com/Iceblockp/mobile-pos-sub001/internal/store"
)

// refCache resolves references to one entity collection, by stable id
// first and by name for older snapshots that carried no ids. First
// occurrence of a duplicated name wins, matching conflict detection.
type refCache struct {
	ids    map[string]struct{}
	byName map[string]string
}

func newRefCache() *refCache {
	return &refCache{
		ids:    make(map[string]struct{}),
		byName: make(map[string]string),
	}
}

func (c *refCache) add(recordID, name string) {
	if recordID != "" {
		c.ids[recordID] = struct{}{}
	}
	if name != "" {
		if _, ok := c.byName[name]; !ok {
			c.byName[name] = recordID
		}
	}
}

// resolve maps an (id, name) reference pair to a known record id.
// Returns ok=false when neither side resolves.
func (c *refCache) resolve(refID, name string) (string, bool) {
	if refID != "" {
		if _, ok := c.ids[refID]; ok {
			return refID, true
		}
	}
	if name != "" {
		if resolved, ok := c.byName[name]; ok {
			return resolved, true
		}
	}
	return "", false
}

// loadRefCache indexes an entire store collection for resolution.
func loadRefCache[T any](ctx context.Context, entity *store.Entity[T], key func(*T) (recordID, name string)) (*refCache, error) {
	cache := newRefCache()
	records, err := entity.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load reference cache: %w", err)
	}
	for _, rec := range records {
		recordID, name := key(rec)
		cache.add(recordID, name)
	}
	return cache, nil
}

// resolveOptional rewrites an optional reference in place. An
// unresolvable reference is cleared and reported as a warning; the
// record still imports.
func resolveOptional(res *Result, cache *refCache, refID *string, name, what, owner string) {
	if *refID == "" && name == "" {
		return
	}
	if resolved, ok := cache.resolve(*refID, name); ok {
		*refID = resolved
		return
	}
	if *refID != "" {
		res.addWarning("%s references unknown %s %q; reference cleared", owner, what, *refID)
		*refID = ""
	}
}

// resolveRequired rewrites a required reference in place. Returns false
// when the reference cannot be resolved; the caller must skip the
// record.
func resolveRequired(cache *refCache, refID *string, name string) bool {
	if resolved, ok := cache.resolve(*refID, name); ok {
		*refID = resolved
		return true
	}
	return false
}

// validRecordID keeps a syntactically valid incoming id, otherwise
// assigns a fresh one.
func validRecordID(incoming string) string {
	if id.Valid(incoming) {
		return incoming
	}
	return id.NewRecordID()
}
