package moderation

import (
	"context"

	"github.com/PancyStudios/TribeBotGo/pkg/database"
	"github.com/PancyStudios/TribeBotGo/pkg/models"
	"golang.org/x/sync/errgroup"
)

// Totals are the moderation counters shown by /stats and the API
type Totals struct {
	Warnings int64 `json:"totalWarnings"` // active only
	Bans     int64 `json:"totalBans"`
	Kicks    int64 `json:"totalKicks"`
	Timeouts int64 `json:"totalTimeouts"`
}

// CollectTotals queries the audit log and the warning ledger concurrently
func CollectTotals(ctx context.Context, logs database.Repository[models.ModerationLogEntry], warns database.Repository[models.Warning]) (Totals, error) {
	var (
		totals   Totals
		byAction map[string]int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		byAction, err = logs.CountBy(gctx, "action")
		return err
	})
	g.Go(func() error {
		var err error
		totals.Warnings, err = warns.Count(gctx, database.Filter{"active": true})
		return err
	})
	if err := g.Wait(); err != nil {
		return Totals{}, err
	}

	totals.Bans = byAction[string(models.ActionBan)]
	totals.Kicks = byAction[string(models.ActionKick)]
	totals.Timeouts = byAction[string(models.ActionTimeout)]
	return totals, nil
}
