package warnings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PancyStudios/TribeBotGo/pkg/database"
	"github.com/PancyStudios/TribeBotGo/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultRecentLimit is how many warnings the history view shows
const DefaultRecentLimit = 10

var (
	// ErrWarningNotFound is returned by Revoke when no active warning matches
	ErrWarningNotFound = errors.New("warning not found")
	// ErrInvalidWarningID is returned for ids that are not ObjectIDs
	ErrInvalidWarningID = errors.New("invalid warning id")
)

// History is a member's active warnings, newest first
type History struct {
	Total  int64
	Recent []*models.Warning
	Tier   Tier
}

// Truncated reports whether Recent shows fewer warnings than Total
func (h *History) Truncated() bool {
	return int64(len(h.Recent)) < h.Total
}

// Ledger reads and writes Warning records
type Ledger struct {
	store database.Repository[models.Warning]
	now   func() time.Time
}

// NewLedger creates a ledger over store
func NewLedger(store database.Repository[models.Warning]) *Ledger {
	return &Ledger{store: store, now: time.Now}
}

// WithClock replaces the ledger clock
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

func activeFilter(guildID, userID string) database.Filter {
	return database.Filter{"guildId": guildID, "userId": userID, "active": true}
}

// Record saves a new active warning
func (l *Ledger) Record(ctx context.Context, guildID, userID, moderatorID, reason string) (*models.Warning, error) {
	w := models.NewWarning(guildID, userID, moderatorID, reason, l.now())
	if err := l.store.Save(ctx, w); err != nil {
		return nil, fmt.Errorf("save warning: %w", err)
	}
	return w, nil
}

// CountActive counts the active warnings of a member, read from the store
func (l *Ledger) CountActive(ctx context.Context, guildID, userID string) (int64, error) {
	n, err := l.store.Count(ctx, activeFilter(guildID, userID))
	if err != nil {
		return 0, fmt.Errorf("count warnings: %w", err)
	}
	return n, nil
}

// ListRecent returns up to limit active warnings, newest first. A limit of
// zero or less uses DefaultRecentLimit.
func (l *Ledger) ListRecent(ctx context.Context, guildID, userID string, limit int) ([]*models.Warning, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	list, err := l.store.Find(ctx, activeFilter(guildID, userID), database.NewestFirst(int64(limit), 0))
	if err != nil {
		return nil, fmt.Errorf("list warnings: %w", err)
	}
	return list, nil
}

// History returns the true total, the most recent warnings and the tier
func (l *Ledger) History(ctx context.Context, guildID, userID string, limit int) (*History, error) {
	total, err := l.CountActive(ctx, guildID, userID)
	if err != nil {
		return nil, err
	}

	h := &History{Total: total, Tier: TierFor(total)}
	if total == 0 {
		return h, nil
	}

	if h.Recent, err = l.ListRecent(ctx, guildID, userID, limit); err != nil {
		return nil, err
	}
	return h, nil
}

// Revoke deactivates one warning of the guild
func (l *Ledger) Revoke(ctx context.Context, guildID, warningID string) error {
	id, err := primitive.ObjectIDFromHex(warningID)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidWarningID, warningID)
	}

	matched, err := l.store.Update(ctx,
		database.Filter{"_id": id, "guildId": guildID, "active": true},
		bson.M{"active": false},
	)
	if err != nil {
		return fmt.Errorf("revoke warning: %w", err)
	}
	if matched == 0 {
		return ErrWarningNotFound
	}
	return nil
}
