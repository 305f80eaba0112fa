// Package notify triggers real-time notifications to online accounts. It
// only looks up where an account is connected and hands the event to a
// Pusher; it never owns task or account data.
package notify

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/tasktracker/internal/common"
	"github.com/dmitrijs2005/tasktracker/internal/logging"
	"github.com/dmitrijs2005/tasktracker/internal/server/repositories/presence"
)

type Event struct {
	Type    string
	TaskID  string
	Message string
}

const (
	EventTaskAssigned      = "task_assigned"
	EventTaskStatusChanged = "task_status_changed"
)

// Notifier is the collaborator services call after a committed mutation.
type Notifier interface {
	Notify(ctx context.Context, accountID string, ev Event)
}

// Pusher delivers an event to a live connection.
type Pusher interface {
	Push(ctx context.Context, connectionID string, ev Event) error
}

// PresenceNotifier resolves the account's connection through the presence
// registry. Offline accounts are skipped; failures are logged, never returned.
type PresenceNotifier struct {
	registry presence.Repository
	pusher   Pusher
	log      logging.Logger
}

func NewPresenceNotifier(registry presence.Repository, pusher Pusher, log logging.Logger) *PresenceNotifier {
	return &PresenceNotifier{registry: registry, pusher: pusher, log: log.With("module", "notify")}
}

func (n *PresenceNotifier) Notify(ctx context.Context, accountID string, ev Event) {
	if accountID == "" {
		return
	}

	p, err := n.registry.Lookup(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			n.log.Debug(ctx, "account offline, notification skipped", "account_id", accountID, "event", ev.Type)
			return
		}
		n.log.Warn(ctx, "presence lookup failed", "account_id", accountID, "error", err)
		return
	}

	if err := n.pusher.Push(ctx, p.ConnectionID, ev); err != nil {
		n.log.Warn(ctx, "push failed", "account_id", accountID, "connection_id", p.ConnectionID, "error", err)
	}
}

// LogPusher records pushes in the log; it stands in for a websocket gateway.
type LogPusher struct {
	log logging.Logger
}

func NewLogPusher(log logging.Logger) *LogPusher {
	return &LogPusher{log: log.With("module", "push")}
}

func (p *LogPusher) Push(ctx context.Context, connectionID string, ev Event) error {
	p.log.Info(ctx, "push", "connection_id", connectionID, "event", ev.Type, "task_id", ev.TaskID, "message", ev.Message)
	return nil
}

// Nop drops every notification.
type Nop struct{}

func (Nop) Notify(context.Context, string, Event) {}
