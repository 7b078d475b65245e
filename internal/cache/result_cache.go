package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"maturitymap/internal/logging"
	"maturitymap/internal/model"
)

// DefaultSlot is the slot name used when there is a single local user
const DefaultSlot = "previousMaturityMapResult"

// SlotKey returns the slot holding a client's previous result
func SlotKey(clientID string) string {
	if clientID == "" {
		return DefaultSlot
	}
	return "maturitymap:" + clientID + ":" + DefaultSlot
}

// ResultCache holds at most one previous assessment result. Storage
// failures are logged and otherwise ignored: losing history only disables
// the score comparison.
type ResultCache struct {
	store  SlotStore
	key    string
	logger *slog.Logger
}

// NewResultCache binds a cache to one slot of store
func NewResultCache(store SlotStore, key string, logger *slog.Logger) *ResultCache {
	return &ResultCache{
		store:  store,
		key:    key,
		logger: logging.OrDiscard(logger),
	}
}

// Load returns the stored result, or nil when the slot is empty or unreadable
func (c *ResultCache) Load(ctx context.Context) *model.AssessmentResult {
	if c == nil || c.store == nil {
		return nil
	}
	data, err := c.store.Get(ctx, c.key)
	if err != nil {
		c.logger.Warn("could not read previous result", "slot", c.key, "error", err)
		return nil
	}
	if len(data) == 0 {
		return nil
	}

	var result model.AssessmentResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Warn("discarding unreadable previous result", "slot", c.key, "error", err)
		return nil
	}
	return &result
}

// Save overwrites the slot with result
func (c *ResultCache) Save(ctx context.Context, result *model.AssessmentResult) {
	if c == nil || c.store == nil || result == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Warn("could not encode result", "slot", c.key, "error", err)
		return
	}
	if err := c.store.Set(ctx, c.key, data); err != nil {
		c.logger.Warn("could not save result", "slot", c.key, "error", err)
	}
}
