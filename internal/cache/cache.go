// Package cache keeps the last settled reading per widget.
package cache

import (
	"encoding/json"
	"strconv"

	"github.com/mmcdole/datapass/internal/domain"
)

const keyResult = "result"

// Entry is the display form of a cached snapshot
type Entry struct {
	Proportion string `json:"proportion"` // "2,5/5,0"
	Unit       string `json:"unit"`
	Percentage int    `json:"percentage"`
	LastUpdate string `json:"lastUpdate"`
	Hint       string `json:"hint"`
}

// ResultCache reads and writes the result_data namespace
type ResultCache struct {
	kv domain.KeyValueStore
}

func New(kv domain.KeyValueStore) *ResultCache {
	return &ResultCache{kv: kv}
}

func key(widgetID int) string { return keyResult + strconv.Itoa(widgetID) }

// Save stores a Success snapshot for widgetID, replacing any prior entry
func (c *ResultCache) Save(widgetID int, s domain.UsageSnapshot) error {
	return c.Put(widgetID, Entry{
		Proportion: s.Proportion(),
		Unit:       string(s.AvailableUnit),
		Percentage: s.WastedPercentage,
		LastUpdate: s.LastUpdateText(),
		Hint:       s.Hint,
	})
}

// Put stores an already formatted entry. The entry is one value, so a
// concurrent Load sees either the old entry or the new one.
func (c *ResultCache) Put(widgetID int, e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return c.kv.PutString(key(widgetID), string(data))
}

// Load returns the last entry for widgetID and whether one exists
func (c *ResultCache) Load(widgetID int) (Entry, bool) {
	raw := c.kv.GetString(key(widgetID), "")
	if raw == "" {
		return Entry{}, false
	}
	var e Entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return Entry{}, false
	}
	return e, true
}

// Percentage returns the cached percentage or 0
func (c *ResultCache) Percentage(widgetID int) int {
	if e, ok := c.Load(widgetID); ok {
		return e.Percentage
	}
	return 0
}

// Delete drops the entry for widgetID
func (c *ResultCache) Delete(widgetID int) error {
	return c.kv.Remove(key(widgetID))
}
