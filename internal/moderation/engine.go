package moderation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PancyStudios/TribeBotGo/internal/warnings"
	"github.com/PancyStudios/TribeBotGo/pkg/database"
	"github.com/PancyStudios/TribeBotGo/pkg/logger"
	"github.com/PancyStudios/TribeBotGo/pkg/models"
	"github.com/bwmarrin/discordgo"
)

// RejectionKind names the precondition that failed
type RejectionKind string

const (
	RejectNotFound      RejectionKind = "not_found"
	RejectSelf          RejectionKind = "self"
	RejectBot           RejectionKind = "bot"
	RejectNotActionable RejectionKind = "not_actionable"
	RejectAlreadyBanned RejectionKind = "already_banned"
)

// Rejection is a failed precondition. Nothing was changed when one is returned.
type Rejection struct {
	Kind    RejectionKind
	Message string
}

func (r *Rejection) Error() string {
	return "rejected: " + string(r.Kind)
}

// ErrUnsupportedAction is returned for actions the engine does not run
var ErrUnsupportedAction = errors.New("unsupported moderation action")

// NotificationOutcome is the result of the best-effort DM to the target
type NotificationOutcome struct {
	Delivered bool
	Reason    string // why it was suppressed
}

// Delivered is the outcome of a sent DM
func Delivered() NotificationOutcome {
	return NotificationOutcome{Delivered: true}
}

// Suppressed is the outcome of a DM that was not sent
func Suppressed(reason string) NotificationOutcome {
	return NotificationOutcome{Reason: reason}
}

func (n NotificationOutcome) String() string {
	if n.Delivered {
		return "delivered"
	}
	return "suppressed: " + n.Reason
}

// Request describes one moderation action
type Request struct {
	Action            models.Action
	GuildID           string
	GuildName         string
	Moderator         *discordgo.User
	Target            *discordgo.User
	Reason            string
	Duration          time.Duration // timeout only
	DeleteMessageDays int           // ban only
}

// Result is what the confirmation reply reports
type Result struct {
	Request
	Entry        *models.ModerationLogEntry
	Notification NotificationOutcome
	Until        time.Time // timeout end

	Warning       *models.Warning
	TotalWarnings int64
	Tier          warnings.Tier

	// LogErr is set when the action succeeded but its audit entry was not saved
	LogErr error
}

// Options configures an Engine
type Options struct {
	SerializeWarns bool
	Publisher      Publisher
	Now            func() time.Time
}

// Engine runs moderation actions
type Engine struct {
	platform  Platform
	logs      database.Repository[models.ModerationLogEntry]
	ledger    *warnings.Ledger
	locks     *KeyedMutex
	publisher Publisher
	now       func() time.Time
}

// NewEngine creates an engine
func NewEngine(platform Platform, logs database.Repository[models.ModerationLogEntry], ledger *warnings.Ledger, opts Options) *Engine {
	e := &Engine{
		platform:  platform,
		logs:      logs,
		ledger:    ledger,
		publisher: opts.Publisher,
		now:       opts.Now,
	}
	if e.now == nil {
		e.now = time.Now
	}
	if opts.SerializeWarns {
		e.locks = NewKeyedMutex()
	}
	return e
}

// Ledger returns the warning ledger used by the engine
func (e *Engine) Ledger() *warnings.Ledger {
	return e.ledger
}

func requiresMember(action models.Action) bool {
	return action == models.ActionKick || action == models.ActionTimeout
}

func verb(action models.Action) string {
	return string(action)
}

// Execute checks the preconditions in order and then applies the action.
// A *Rejection means nothing was changed. Any other error happened after the
// checks passed; side effects already made are not rolled back.
func (e *Engine) Execute(ctx context.Context, req Request) (*Result, error) {
	switch req.Action {
	case models.ActionBan, models.ActionKick, models.ActionTimeout, models.ActionWarn:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAction, req.Action)
	}
	if req.Target == nil || req.Moderator == nil {
		return nil, &Rejection{Kind: RejectNotFound, Message: "❌ User not found in this server!"}
	}
	if req.Reason == "" {
		req.Reason = models.DefaultReason
	}

	member, err := e.checkPreconditions(ctx, req)
	if err != nil {
		return nil, err
	}

	if req.Action == models.ActionWarn {
		if e.locks != nil {
			unlock := e.locks.Lock(req.GuildID + ":" + req.Target.ID)
			defer unlock()
		}
		return e.warn(ctx, req)
	}

	res := &Result{Request: req}

	// DM goes out first: after a ban or kick the bot may share no guild with the target
	if member != nil {
		res.Notification = e.notify(ctx, req.Target.ID, ActionDMEmbed(req, e.now()))
	} else {
		res.Notification = Suppressed("not a member of the guild")
	}

	audit := AuditReason(req.Reason, req.Moderator)
	switch req.Action {
	case models.ActionBan:
		err = e.platform.Ban(ctx, req.GuildID, req.Target.ID, audit, req.DeleteMessageDays)
	case models.ActionKick:
		err = e.platform.Kick(ctx, req.GuildID, req.Target.ID, audit)
	case models.ActionTimeout:
		res.Until = e.now().Add(req.Duration)
		err = e.platform.Timeout(ctx, req.GuildID, req.Target.ID, res.Until, audit)
	}
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Action, req.Target.ID, err)
	}

	e.record(ctx, res)
	return res, nil
}

func (e *Engine) checkPreconditions(ctx context.Context, req Request) (*discordgo.Member, error) {
	var member *discordgo.Member
	if req.Action != models.ActionWarn {
		m, err := e.platform.ResolveMember(ctx, req.GuildID, req.Target.ID)
		switch {
		case err == nil:
			member = m
		case errors.Is(err, ErrMemberNotFound):
		default:
			return nil, fmt.Errorf("resolve member %s: %w", req.Target.ID, err)
		}
		if member == nil && requiresMember(req.Action) {
			return nil, &Rejection{Kind: RejectNotFound, Message: "❌ User not found in this server!"}
		}
	}

	if req.Target.ID == req.Moderator.ID {
		return nil, &Rejection{Kind: RejectSelf, Message: fmt.Sprintf("❌ You cannot %s yourself!", verb(req.Action))}
	}

	if req.Target.ID == e.platform.BotID() {
		return nil, &Rejection{Kind: RejectBot, Message: fmt.Sprintf("❌ I cannot %s myself!", verb(req.Action))}
	}
	if req.Action == models.ActionWarn && req.Target.Bot {
		return nil, &Rejection{Kind: RejectBot, Message: "❌ You cannot warn a bot!"}
	}

	if member != nil {
		ok, err := e.platform.Actionable(ctx, req.GuildID, member, req.Action)
		if err != nil {
			return nil, fmt.Errorf("check actionable %s: %w", req.Target.ID, err)
		}
		if !ok {
			return nil, &Rejection{
				Kind:    RejectNotActionable,
				Message: fmt.Sprintf("❌ I cannot %s this user. Check my permissions and role hierarchy.", verb(req.Action)),
			}
		}
	}

	if req.Action == models.ActionBan {
		banned, err := e.platform.IsBanned(ctx, req.GuildID, req.Target.ID)
		if err != nil {
			return nil, fmt.Errorf("check ban %s: %w", req.Target.ID, err)
		}
		if banned {
			return nil, &Rejection{Kind: RejectAlreadyBanned, Message: "❌ This user is already banned!"}
		}
	}

	return member, nil
}

func (e *Engine) warn(ctx context.Context, req Request) (*Result, error) {
	w, err := e.ledger.Record(ctx, req.GuildID, req.Target.ID, req.Moderator.ID, req.Reason)
	if err != nil {
		return nil, err
	}

	res := &Result{Request: req, Warning: w}
	e.record(ctx, res)

	total, err := e.ledger.CountActive(ctx, req.GuildID, req.Target.ID)
	if err != nil {
		return nil, err
	}
	res.TotalWarnings = total
	res.Tier = warnings.TierFor(total)

	res.Notification = e.notify(ctx, req.Target.ID, WarnDMEmbed(req, total, e.now()))
	return res, nil
}

// record saves the audit entry and publishes it. Failures do not undo the action.
func (e *Engine) record(ctx context.Context, res *Result) {
	res.Entry = models.NewModerationLogEntry(res.Action, res.GuildID, res.Target.ID, res.Moderator.ID, res.Reason, res.Duration, e.now())

	if err := e.logs.Save(ctx, res.Entry); err != nil {
		res.LogErr = err
		logger.Error(fmt.Sprintf("No se pudo guardar el log de %s para %s: %v", res.Action, res.Target.ID, err), "Moderation")
		return
	}

	if e.publisher != nil {
		if err := e.publisher.PublishAction(ctx, res.Entry); err != nil {
			logger.Warn(fmt.Sprintf("No se pudo publicar la acción %s: %v", res.Action, err), "Moderation")
		}
	}
}

func (e *Engine) notify(ctx context.Context, userID string, embed *discordgo.MessageEmbed) NotificationOutcome {
	if err := e.platform.SendDirect(ctx, userID, embed); err != nil {
		logger.Debug(fmt.Sprintf("No se pudo enviar DM a %s: %v", userID, err), "Moderation")
		return Suppressed(err.Error())
	}
	return Delivered()
}

// AuditReason is the reason attached to the platform audit log
func AuditReason(reason string, moderator *discordgo.User) string {
	return fmt.Sprintf("%s | Moderator: %s", reason, Tag(moderator))
}
