// Package feed groups a flat, time-ascending message list into the
// separator-delimited sections a chat view renders.
package feed

import (
	"time"

	"hostelx-service/internal/models"
)

// DefaultGap is the silence threshold after which a new time separator is
// inserted.
const DefaultGap = 30 * time.Minute

// Item kinds.
const (
	KindTime    = "time"
	KindMessage = "message"
)

// Item is one renderable entry: either a time separator or a message.
type Item struct {
	Kind    string          `json:"kind"`
	Time    time.Time       `json:"time"`
	Message *models.Message `json:"message,omitempty"`
}

// Compose walks messages in order and inserts a separator before the first
// message and before any message more than gap after the previous
// separator's anchor time. Pure and restartable; gap <= 0 falls back to
// DefaultGap.
func Compose(msgs []models.Message, gap time.Duration) []Item {
	if gap <= 0 {
		gap = DefaultGap
	}

	items := make([]Item, 0, len(msgs)+1)
	var anchor time.Time
	for i, m := range msgs {
		if i == 0 || m.CreatedAt.Sub(anchor) > gap {
			anchor = m.CreatedAt
			items = append(items, Item{Kind: KindTime, Time: anchor})
		}
		msg := m
		items = append(items, Item{Kind: KindMessage, Time: m.CreatedAt, Message: &msg})
	}
	return items
}
