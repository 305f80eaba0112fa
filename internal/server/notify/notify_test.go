package notify

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/tasktracker/internal/common"
	"github.com/dmitrijs2005/tasktracker/internal/logging"
	"github.com/dmitrijs2005/tasktracker/internal/server/models"
	"github.com/stretchr/testify/assert"
)

type fakeRegistry struct {
	conns map[string]string
	err   error
}

func (f *fakeRegistry) Register(ctx context.Context, accountID, connectionID string) error {
	f.conns[accountID] = connectionID
	return nil
}

func (f *fakeRegistry) Unregister(ctx context.Context, accountID string) error {
	delete(f.conns, accountID)
	return nil
}

func (f *fakeRegistry) Lookup(ctx context.Context, accountID string) (*models.Presence, error) {
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.conns[accountID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &models.Presence{AccountID: accountID, ConnectionID: c}, nil
}

type recordingPusher struct {
	pushed []string
	err    error
}

func (p *recordingPusher) Push(ctx context.Context, connectionID string, ev Event) error {
	p.pushed = append(p.pushed, connectionID+":"+ev.Type)
	return p.err
}

func TestPresenceNotifier(t *testing.T) {
	reg := &fakeRegistry{conns: map[string]string{}}
	pusher := &recordingPusher{}
	n := NewPresenceNotifier(reg, pusher, logging.Nop())
	ctx := context.Background()

	_ = reg.Register(ctx, "u-1", "conn-1")

	n.Notify(ctx, "u-1", Event{Type: EventTaskAssigned, TaskID: "t-1"})
	n.Notify(ctx, "u-2", Event{Type: EventTaskAssigned, TaskID: "t-1"})
	n.Notify(ctx, "", Event{Type: EventTaskAssigned})

	assert.Equal(t, []string{"conn-1:task_assigned"}, pusher.pushed)
}

func TestPresenceNotifier_FailuresAreLogged(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(&buf, "info", "text")
	ctx := context.Background()

	n := NewPresenceNotifier(&fakeRegistry{err: errors.New("db down")}, &recordingPusher{}, log)
	n.Notify(ctx, "u-1", Event{Type: EventTaskStatusChanged})
	assert.Contains(t, buf.String(), "presence lookup failed")

	buf.Reset()
	reg := &fakeRegistry{conns: map[string]string{"u-1": "c"}}
	n = NewPresenceNotifier(reg, &recordingPusher{err: errors.New("gone")}, log)
	n.Notify(ctx, "u-1", Event{Type: EventTaskStatusChanged})
	assert.Contains(t, buf.String(), "push failed")
}

func TestLogPusher(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogPusher(logging.New(&buf, "info", "json"))

	assert.NoError(t, p.Push(context.Background(), "conn-1", Event{Type: EventTaskAssigned, TaskID: "t-9"}))
	assert.Contains(t, buf.String(), `"task_id":"t-9"`)
}
