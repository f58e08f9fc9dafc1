package service

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"time"

	"github.com/iliyamo/telehealth-core/internal/model"
)

// MessageStore is satisfied by *repository.MessageRepo.
type MessageStore interface {
	Create(ctx context.Context, m *model.Message) error
	CreateTx(ctx context.Context, tx *sql.Tx, m *model.Message) error
	ListBetween(ctx context.Context, a, b string) ([]model.Message, error)
}

// MessageLog is the append-only conversation store.
type MessageLog struct {
	messages MessageStore
	clock    *clock
	timeout  time.Duration
}

func NewMessageLog(messages MessageStore, timeout time.Duration) *MessageLog {
	return &MessageLog{messages: messages, clock: newClock(nil), timeout: timeout}
}

// Append stores a message stamped with the current time.
func (l *MessageLog) Append(ctx context.Context, sender, receiver, body string) (model.Message, error) {
	if strings.TrimSpace(body) == "" {
		return model.Message{}, ErrEmptyBody
	}
	if strings.TrimSpace(sender) == "" || strings.TrimSpace(receiver) == "" {
		return model.Message{}, ErrInvalidInput
	}
	ctx, cancel := bounded(ctx, l.timeout)
	defer cancel()

	m := model.Message{Sender: sender, Receiver: receiver, Body: body, SentAt: l.clock.Now()}
	if err := l.messages.Create(ctx, &m); err != nil {
		return model.Message{}, storeError(err)
	}
	return m, nil
}

// History returns the conversation between a and b in both directions,
// oldest first.  The result is the same whichever side asks.
func (l *MessageLog) History(ctx context.Context, a, b string) ([]model.Message, error) {
	ctx, cancel := bounded(ctx, l.timeout)
	defer cancel()
	msgs, err := l.messages.ListBetween(ctx, a, b)
	if err != nil {
		return nil, storeError(err)
	}
	return orderedUnique(msgs), nil
}

// orderedUnique sorts by (SentAt, ID) and drops repeated IDs.
func orderedUnique(msgs []model.Message) []model.Message {
	sort.SliceStable(msgs, func(i, j int) bool {
		if !msgs[i].SentAt.Equal(msgs[j].SentAt) {
			return msgs[i].SentAt.Before(msgs[j].SentAt)
		}
		return msgs[i].ID < msgs[j].ID
	})
	out := make([]model.Message, 0, len(msgs))
	seen := make(map[uint64]struct{}, len(msgs))
	for _, m := range msgs {
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}
	return out
}
