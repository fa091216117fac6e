package server

import (
	"context"
	"log"
)

// publishAdminEvent pushes an event onto the admin Redis channel. Connected
// dashboard clients receive it through the hub's subscriber. Failures are
// logged and never surfaced to the API caller; the mutating request has
// already committed by the time this runs.
func (s *Server) publishAdminEvent(ctx context.Context, eventType string, payload any) {
	if err := s.notifier.PublishAdmin(ctx, eventType, payload); err != nil {
		log.Printf("failed to publish %s event: %v", eventType, err)
	}
}
