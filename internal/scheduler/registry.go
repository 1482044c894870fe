package scheduler

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/datapass/internal/domain"
)

// Keys in the misc namespace
const (
	keyWidgetIDs     = "app_ids"
	keyCarrierPrefix = "carrier_"
	keyLastUpdate    = "last_update_timestamp"
)

// Registry is the persistent set of placed widgets. Registering an id
// that is already present is a no-op.
type Registry struct {
	kv domain.KeyValueStore

	mu      sync.RWMutex
	widgets map[int]domain.WidgetInstance
}

// LoadRegistry reads the widget set from kv
func LoadRegistry(kv domain.KeyValueStore) *Registry {
	r := &Registry{kv: kv, widgets: make(map[int]domain.WidgetInstance)}
	for _, part := range strings.Split(kv.GetString(keyWidgetIDs, ""), ",") {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || id <= 0 {
			continue
		}
		inst := domain.WidgetInstance{
			ID:        id,
			CarrierID: kv.GetString(carrierKey(id), domain.CarrierNotSelectedID),
		}
		if ms := kv.GetLong(lastUpdateKey(id), 0); ms > 0 {
			inst.LastRefreshTimestamp = time.UnixMilli(ms)
		}
		r.widgets[id] = inst
	}
	return r
}

func carrierKey(id int) string    { return keyCarrierPrefix + strconv.Itoa(id) }
func lastUpdateKey(id int) string { return keyLastUpdate + strconv.Itoa(id) }

// Register adds id with carrierID. added is false when id was already
// registered, in which case the stored instance is returned unchanged.
func (r *Registry) Register(id int, carrierID string) (inst domain.WidgetInstance, added bool, err error) {
	if id <= 0 {
		return domain.WidgetInstance{}, false, domain.ErrInvalidWidgetID
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.widgets[id]; ok {
		return existing, false, nil
	}
	inst = domain.WidgetInstance{ID: id, CarrierID: carrierID}
	if err := r.kv.PutString(carrierKey(id), carrierID); err != nil {
		return domain.WidgetInstance{}, false, fmt.Errorf("store carrier: %w", err)
	}
	r.widgets[id] = inst
	if err := r.persistIDs(); err != nil {
		delete(r.widgets, id)
		return domain.WidgetInstance{}, false, err
	}
	return inst, true, nil
}

// Get returns the instance for id
func (r *Registry) Get(id int) (domain.WidgetInstance, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.widgets[id]
	return inst, ok
}

// All returns every instance ordered by id
func (r *Registry) All() []domain.WidgetInstance {
	r.mu.RLock()
	out := make([]domain.WidgetInstance, 0, len(r.widgets))
	for _, inst := range r.widgets {
		out = append(out, inst)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of placed widgets
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.widgets)
}

// SetCarrier replaces the sticky carrier assignment of id
func (r *Registry) SetCarrier(id int, carrierID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.widgets[id]
	if !ok {
		return domain.ErrWidgetNotFound
	}
	if err := r.kv.PutString(carrierKey(id), carrierID); err != nil {
		return fmt.Errorf("store carrier: %w", err)
	}
	inst.CarrierID = carrierID
	r.widgets[id] = inst
	return nil
}

// Touch records a completed refresh of id at t
func (r *Registry) Touch(id int, t time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.widgets[id]
	if !ok {
		return domain.ErrWidgetNotFound
	}
	if err := r.kv.PutLong(lastUpdateKey(id), t.UnixMilli()); err != nil {
		return fmt.Errorf("store timestamp: %w", err)
	}
	inst.LastRefreshTimestamp = t
	r.widgets[id] = inst
	return nil
}

// Remove forgets id and its stored state
func (r *Registry) Remove(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.widgets[id]; !ok {
		return domain.ErrWidgetNotFound
	}
	delete(r.widgets, id)
	if err := r.persistIDs(); err != nil {
		return err
	}
	if err := r.kv.Remove(carrierKey(id)); err != nil {
		return err
	}
	return r.kv.Remove(lastUpdateKey(id))
}

// persistIDs writes the id set; callers hold mu
func (r *Registry) persistIDs() error {
	ids := make([]int, 0, len(r.widgets))
	for id := range r.widgets {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	if err := r.kv.PutString(keyWidgetIDs, strings.Join(parts, ",")); err != nil {
		return fmt.Errorf("store widget ids: %w", err)
	}
	return nil
}
