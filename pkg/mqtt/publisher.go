package mqtt

import (
	"context"

	"github.com/PancyStudios/TribeBotGo/internal/moderation"
	"github.com/PancyStudios/TribeBotGo/pkg/models"
)

type contextPublisher interface {
	PublishContext(ctx context.Context, topic string, payload interface{}) error
}

// ModerationPublisher broadcasts every completed moderation action on
// tribe/moderation/<action>
type ModerationPublisher struct {
	pub contextPublisher
}

var _ moderation.Publisher = (*ModerationPublisher)(nil)

// NewModerationPublisher wraps a communicator
func NewModerationPublisher(mc *MqttCommunicator) *ModerationPublisher {
	return &ModerationPublisher{pub: mc}
}

// ActionTopic is the topic an action is published on
func ActionTopic(action models.Action) string {
	return TopicPrefix + "/moderation/" + string(action)
}

// PublishAction publishes the log entry of a completed action
func (p *ModerationPublisher) PublishAction(ctx context.Context, entry *models.ModerationLogEntry) error {
	return p.pub.PublishContext(ctx, ActionTopic(entry.Action), entry)
}
