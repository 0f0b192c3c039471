package classifier

import (
	"context"

	"go.uber.org/zap"

	"griefingcounter/internal/models"
)

// Classifier maintains the persistent name→category cache on top of the pure
// rule set in rules.go.
type Classifier struct {
	store  CategoryStore
	logger *zap.Logger
}

// CategoryStore is the slice of the event store the classifier needs.
type CategoryStore interface {
	EnsureCategory(ctx context.Context, name, category string) error
	UpdateCategory(ctx context.Context, name, category string) error
	Category(ctx context.Context, name string) (string, bool, error)
	Uncategorized(ctx context.Context) ([]string, error)
}

func New(store CategoryStore, logger *zap.Logger) *Classifier {
	return &Classifier{store: store, logger: logger}
}

// Register makes sure a cache entry exists for an NPC name, classifying it on
// first sight, then gives earlier unresolved entries another chance. Names
// that are not NPCs are ignored.
func (c *Classifier) Register(ctx context.Context, raw string) error {
	if !IsNPC(raw) {
		return nil
	}
	name := Normalize(raw)
	if _, known, err := c.store.Category(ctx, name); err != nil {
		return err
	} else if known {
		return nil
	}
	cat := Classify(name)
	if err := c.store.EnsureCategory(ctx, name, cat); err != nil {
		return err
	}
	c.logger.Debug("Cached NPC category", zap.String("name", name), zap.String("category", cat))

	// Newly learned names may make older uncategorized entries resolvable.
	_, err := c.ReclassifyPending(ctx)
	return err
}

// ReclassifyPending re-runs the rules over every cache entry still at
// "uncategorized" and updates those that now resolve. Idempotent; the pending
// subset is expected to stay small.
func (c *Classifier) ReclassifyPending(ctx context.Context) (int, error) {
	pending, err := c.store.Uncategorized(ctx)
	if err != nil {
		return 0, err
	}
	updated := 0
	for _, name := range pending {
		cat := Classify(name)
		if cat == models.CategoryUncategorized {
			continue
		}
		if err := c.store.UpdateCategory(ctx, name, cat); err != nil {
			return updated, err
		}
		c.logger.Info("Reclassified NPC",
			zap.String("name", name), zap.String("category", cat))
		updated++
	}
	return updated, nil
}

// Lookup returns the cached category for a raw name, falling back to a fresh
// classification when the cache has no entry.
func (c *Classifier) Lookup(ctx context.Context, raw string) (string, error) {
	name := Normalize(raw)
	if cat, known, err := c.store.Category(ctx, name); err != nil {
		return "", err
	} else if known {
		return cat, nil
	}
	return Classify(name), nil
}
