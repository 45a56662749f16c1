// Package actor adapts the counter dispatcher to the ingestion counter port.
package actor

import (
	"chat-stats-service/internal/counters"
	"chat-stats-service/internal/messages/core/ports"
)

type CounterAdapter struct {
	dispatcher *counters.Dispatcher
}

func NewCounterAdapter(d *counters.Dispatcher) *CounterAdapter {
	return &CounterAdapter{dispatcher: d}
}

var _ ports.CounterPort = (*CounterAdapter)(nil)

func (a *CounterAdapter) TryIncrement(inc ports.CounterIncrement) bool {
	return a.dispatcher.TryIncrement(counters.IncrementRequest{
		ChatID:   inc.ChatID,
		UserID:   inc.UserID,
		Username: inc.Username,
		Day:      inc.Day,
		Words:    inc.Words,
	})
}
