// Package server hosts the HTTP API the CLI talks to: graph reads, node
// updates, import/export, and an SSE event stream.
package server

import (
	"context"
	"log/slog"

	"github.com/meulenbelt/tendergraph/internal/events"
	"github.com/meulenbelt/tendergraph/internal/store"
)

// GraphServer serves the project graph API over HTTP.
type GraphServer struct {
	store     store.Store
	publisher events.Publisher
	sseHub    *sseHub
}

// NewGraphServer returns a new GraphServer backed by the given store and
// publisher.
func NewGraphServer(s store.Store, p events.Publisher) *GraphServer {
	return &GraphServer{
		store:     s,
		publisher: p,
		sseHub:    newSSEHub(),
	}
}

// publishEvent sends an event to NATS and to connected SSE clients. Both are
// best-effort; failures are logged but do not block the caller.
func (s *GraphServer) publishEvent(ctx context.Context, topic string, event any) {
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		slog.Warn("failed to publish event", "topic", topic, "error", err)
	}
	s.broadcastEvent(topic, event)
}

// inputError indicates invalid user input.
// The HTTP layer maps this to 400 Bad Request.
type inputError string

func (e inputError) Error() string { return string(e) }
