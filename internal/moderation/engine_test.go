package moderation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/PancyStudios/TribeBotGo/internal/warnings"
	"github.com/PancyStudios/TribeBotGo/pkg/database"
	"github.com/PancyStudios/TribeBotGo/pkg/models"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testGuild = "guild"
	botID     = "bot"
)

type fakePlatform struct {
	mu         sync.Mutex
	members    map[string]*discordgo.Member
	banned     map[string]bool
	blocked    map[string]bool // not actionable
	dmClosed   bool
	actionErr  error
	calls      []string
	dms        []*discordgo.MessageEmbed
	lastAudit  string
	lastUntil  time.Time
	deleteDays int
}

func newFakePlatform(memberIDs ...string) *fakePlatform {
	p := &fakePlatform{
		members: make(map[string]*discordgo.Member),
		banned:  make(map[string]bool),
		blocked: make(map[string]bool),
	}
	for _, id := range append(memberIDs, botID, "mod") {
		p.members[id] = &discordgo.Member{User: &discordgo.User{ID: id, Username: id}}
	}
	return p
}

func (p *fakePlatform) record(call string) {
	p.mu.Lock()
	p.calls = append(p.calls, call)
	p.mu.Unlock()
}

func (p *fakePlatform) BotID() string { return botID }

func (p *fakePlatform) ResolveMember(_ context.Context, _, userID string) (*discordgo.Member, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if m, ok := p.members[userID]; ok {
		return m, nil
	}
	return nil, ErrMemberNotFound
}

func (p *fakePlatform) Actionable(_ context.Context, _ string, m *discordgo.Member, _ models.Action) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.blocked[m.User.ID], nil
}

func (p *fakePlatform) IsBanned(_ context.Context, _, userID string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.banned[userID], nil
}

func (p *fakePlatform) Ban(_ context.Context, _, userID, audit string, days int) error {
	p.record("ban")
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastAudit, p.deleteDays = audit, days
	return p.actionErr
}

func (p *fakePlatform) Kick(_ context.Context, _, _, audit string) error {
	p.record("kick")
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastAudit = audit
	return p.actionErr
}

func (p *fakePlatform) Timeout(_ context.Context, _, _ string, until time.Time, audit string) error {
	p.record("timeout")
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastAudit, p.lastUntil = audit, until
	return p.actionErr
}

func (p *fakePlatform) SendDirect(_ context.Context, _ string, embed *discordgo.MessageEmbed) error {
	p.record("dm")
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dmClosed {
		return errors.New("Cannot send messages to this user")
	}
	p.dms = append(p.dms, embed)
	return nil
}

// failingLogs fails every Save
type failingLogs struct {
	*database.MemoryStore[models.ModerationLogEntry]
}

func (failingLogs) Save(context.Context, *models.ModerationLogEntry) error {
	return errors.New("disk full")
}

type recordingPublisher struct {
	mu      sync.Mutex
	entries []*models.ModerationLogEntry
}

func (r *recordingPublisher) PublishAction(_ context.Context, e *models.ModerationLogEntry) error {
	r.mu.Lock()
	r.entries = append(r.entries, e)
	r.mu.Unlock()
	return nil
}

type engineFixture struct {
	platform *fakePlatform
	logs     *database.MemoryStore[models.ModerationLogEntry]
	warns    *database.MemoryStore[models.Warning]
	engine   *Engine
	now      time.Time
}

func newEngineFixture(p *fakePlatform, opts Options) *engineFixture {
	f := &engineFixture{
		platform: p,
		logs:     database.NewMemoryStore[models.ModerationLogEntry](),
		warns:    database.NewMemoryStore[models.Warning](),
		now:      time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }
	opts.Now = clock
	f.engine = NewEngine(p, f.logs, warnings.NewLedger(f.warns).WithClock(clock), opts)
	return f
}

func (f *engineFixture) logCount(t *testing.T) int64 {
	t.Helper()
	n, err := f.logs.Count(context.Background(), nil)
	require.NoError(t, err)
	return n
}

func user(id string) *discordgo.User {
	return &discordgo.User{ID: id, Username: id}
}

func request(action models.Action, target string) Request {
	return Request{
		Action:    action,
		GuildID:   testGuild,
		GuildName: "The Tribe",
		Moderator: &discordgo.User{ID: "mod", Username: "moddy"},
		Target:    user(target),
		Reason:    "spam",
		Duration:  10 * time.Minute,
	}
}

func TestWarnCountsFromLedger(t *testing.T) {
	f := newEngineFixture(newFakePlatform("u"), Options{})
	ctx := context.Background()

	res, err := f.engine.Execute(ctx, request(models.ActionWarn, "u"))
	require.NoError(t, err)

	assert.Equal(t, int64(1), res.TotalWarnings)
	assert.Equal(t, warnings.TierLow, res.Tier)
	require.NotNil(t, res.Warning)
	assert.True(t, res.Warning.Active)

	nWarn, err := f.warns.Count(ctx, database.Filter{"guildId": testGuild, "userId": "u"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), nWarn)

	entries, err := f.logs.Find(ctx, nil, database.FindOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.ActionWarn, entries[0].Action)
	assert.Nil(t, entries[0].DurationMs)

	assert.True(t, res.Notification.Delivered)
	require.Len(t, f.platform.dms, 1)
	assert.Equal(t, "1", f.platform.dms[0].Fields[2].Value)
	assert.Nil(t, AdvisoryEmbed(res))
}

func TestWarnEscalation(t *testing.T) {
	f := newEngineFixture(newFakePlatform("u"), Options{SerializeWarns: true})
	ctx := context.Background()

	want := []warnings.Tier{
		warnings.TierLow, warnings.TierLowMedium, warnings.TierHigh,
		warnings.TierHigh, warnings.TierCritical, warnings.TierCritical,
	}
	for i, tier := range want {
		res, err := f.engine.Execute(ctx, request(models.ActionWarn, "u"))
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), res.TotalWarnings)
		assert.Equal(t, tier, res.Tier)

		advisory := AdvisoryEmbed(res)
		if tier.AtLeast(warnings.TierHigh) {
			require.NotNil(t, advisory, "warn %d", i+1)
			assert.Equal(t, tier.Recommendations(), advisory.Fields[0].Value)
		} else {
			assert.Nil(t, advisory, "warn %d", i+1)
		}
	}
	assert.Equal(t, int64(len(want)), f.logCount(t))
}

func TestConcurrentWarnsReportDistinctTotals(t *testing.T) {
	f := newEngineFixture(newFakePlatform("u"), Options{SerializeWarns: true})

	const n = 8
	totals := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := f.engine.Execute(context.Background(), request(models.ActionWarn, "u"))
			if assert.NoError(t, err) {
				totals <- res.TotalWarnings
			}
		}()
	}
	wg.Wait()
	close(totals)

	seen := make(map[int64]bool)
	for total := range totals {
		assert.False(t, seen[total], "total %d reported twice", total)
		seen[total] = true
	}
	assert.Len(t, seen, n)
	assert.Zero(t, f.engine.locks.Len())
}

func TestSelfAndBotTargetsRejectedWithoutSideEffects(t *testing.T) {
	actions := []models.Action{models.ActionBan, models.ActionKick, models.ActionTimeout, models.ActionWarn}

	for _, action := range actions {
		for _, target := range []string{"mod", botID} {
			t.Run(string(action)+"/"+target, func(t *testing.T) {
				p := newFakePlatform()
				f := newEngineFixture(p, Options{})

				_, err := f.engine.Execute(context.Background(), request(action, target))

				var rej *Rejection
				require.ErrorAs(t, err, &rej)
				if target == "mod" {
					assert.Equal(t, RejectSelf, rej.Kind)
				} else {
					assert.Equal(t, RejectBot, rej.Kind)
				}
				assert.Zero(t, f.logCount(t))
				assert.Empty(t, p.calls, "no platform call or DM expected")
			})
		}
	}
}

func TestWarnRejectsAnyBot(t *testing.T) {
	f := newEngineFixture(newFakePlatform(), Options{})
	req := request(models.ActionWarn, "other-bot")
	req.Target.Bot = true

	_, err := f.engine.Execute(context.Background(), req)

	var rej *Rejection
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, RejectBot, rej.Kind)
	assert.Equal(t, "❌ You cannot warn a bot!", rej.Message)
}

func TestPreconditionOrder(t *testing.T) {
	t.Run("missing member before self", func(t *testing.T) {
		p := newFakePlatform()
		delete(p.members, "mod")
		f := newEngineFixture(p, Options{})

		_, err := f.engine.Execute(context.Background(), request(models.ActionKick, "mod"))
		var rej *Rejection
		require.ErrorAs(t, err, &rej)
		assert.Equal(t, RejectNotFound, rej.Kind)
	})

	t.Run("not actionable", func(t *testing.T) {
		p := newFakePlatform("u")
		p.blocked["u"] = true
		f := newEngineFixture(p, Options{})

		_, err := f.engine.Execute(context.Background(), request(models.ActionTimeout, "u"))
		var rej *Rejection
		require.ErrorAs(t, err, &rej)
		assert.Equal(t, RejectNotActionable, rej.Kind)
		assert.Contains(t, rej.Message, "role hierarchy")
		assert.Empty(t, p.calls)
	})

	t.Run("already banned", func(t *testing.T) {
		p := newFakePlatform("u")
		p.banned["u"] = true
		f := newEngineFixture(p, Options{})

		_, err := f.engine.Execute(context.Background(), request(models.ActionBan, "u"))
		var rej *Rejection
		require.ErrorAs(t, err, &rej)
		assert.Equal(t, RejectAlreadyBanned, rej.Kind)
		assert.Empty(t, p.calls)
	})
}

func TestBanSendsDMBeforeAction(t *testing.T) {
	p := newFakePlatform("u")
	pub := &recordingPublisher{}
	f := newEngineFixture(p, Options{Publisher: pub})
	req := request(models.ActionBan, "u")
	req.DeleteMessageDays = 2

	res, err := f.engine.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, []string{"dm", "ban"}, p.calls)
	assert.Equal(t, "spam | Moderator: moddy", p.lastAudit)
	assert.Equal(t, 2, p.deleteDays)
	assert.True(t, res.Notification.Delivered)
	assert.Equal(t, int64(1), f.logCount(t))
	require.Len(t, pub.entries, 1)
	assert.Equal(t, models.ActionBan, pub.entries[0].Action)
}

func TestBanNonMemberSkipsDM(t *testing.T) {
	p := newFakePlatform()
	f := newEngineFixture(p, Options{})

	res, err := f.engine.Execute(context.Background(), request(models.ActionBan, "stranger"))
	require.NoError(t, err)

	assert.Equal(t, []string{"ban"}, p.calls)
	assert.False(t, res.Notification.Delivered)
	assert.Equal(t, "not a member of the guild", res.Notification.Reason)
}

func TestTimeoutRecordsDuration(t *testing.T) {
	p := newFakePlatform("u")
	f := newEngineFixture(p, Options{})

	res, err := f.engine.Execute(context.Background(), request(models.ActionTimeout, "u"))
	require.NoError(t, err)

	assert.Equal(t, f.now.Add(10*time.Minute), p.lastUntil)
	assert.Equal(t, p.lastUntil, res.Until)
	require.NotNil(t, res.Entry.DurationMs)
	assert.Equal(t, int64(600000), *res.Entry.DurationMs)
}

func TestClosedDMsAreNotAnError(t *testing.T) {
	p := newFakePlatform("u")
	p.dmClosed = true
	f := newEngineFixture(p, Options{})

	res, err := f.engine.Execute(context.Background(), request(models.ActionKick, "u"))
	require.NoError(t, err)

	assert.False(t, res.Notification.Delivered)
	assert.Contains(t, res.Notification.String(), "suppressed")
	assert.Equal(t, []string{"dm", "kick"}, p.calls)

	embed := ConfirmationEmbed(res, f.now)
	last := embed.Fields[len(embed.Fields)-1]
	assert.Equal(t, "DM Sent", last.Name)
	assert.Equal(t, "❌ No", last.Value)
}

func TestPlatformFailureWritesNoLog(t *testing.T) {
	p := newFakePlatform("u")
	p.actionErr = errors.New("missing permissions")
	f := newEngineFixture(p, Options{})

	_, err := f.engine.Execute(context.Background(), request(models.ActionKick, "u"))
	require.Error(t, err)

	var rej *Rejection
	assert.False(t, errors.As(err, &rej))
	assert.Zero(t, f.logCount(t))
}

func TestLogFailureStillSucceeds(t *testing.T) {
	p := newFakePlatform("u")
	warns := database.NewMemoryStore[models.Warning]()
	logs := failingLogs{database.NewMemoryStore[models.ModerationLogEntry]()}
	engine := NewEngine(p, logs, warnings.NewLedger(warns), Options{})

	res, err := engine.Execute(context.Background(), request(models.ActionKick, "u"))
	require.NoError(t, err)
	assert.Error(t, res.LogErr)
	assert.Equal(t, []string{"dm", "kick"}, p.calls)
}

func TestDefaultReason(t *testing.T) {
	f := newEngineFixture(newFakePlatform("u"), Options{})
	req := request(models.ActionKick, "u")
	req.Reason = ""

	res, err := f.engine.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultReason, res.Entry.Reason)
	assert.Equal(t, models.DefaultReason+" | Moderator: moddy", f.platform.lastAudit)
}

func TestUnsupportedAction(t *testing.T) {
	f := newEngineFixture(newFakePlatform("u"), Options{})
	_, err := f.engine.Execute(context.Background(), request(models.ActionUnban, "u"))
	assert.ErrorIs(t, err, ErrUnsupportedAction)
}

func TestCollectTotals(t *testing.T) {
	f := newEngineFixture(newFakePlatform("a", "b"), Options{})
	ctx := context.Background()

	for _, req := range []Request{
		request(models.ActionWarn, "a"),
		request(models.ActionKick, "a"),
		request(models.ActionBan, "b"),
	} {
		_, err := f.engine.Execute(ctx, req)
		require.NoError(t, err)
	}

	totals, err := CollectTotals(ctx, f.logs, f.warns)
	require.NoError(t, err)
	assert.Equal(t, Totals{Warnings: 1, Bans: 1, Kicks: 1}, totals)
}
