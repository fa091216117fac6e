// Package events provides real-time event publishing for the admin console.
// Mutations publish typed events into Redis pub/sub; connected admin
// dashboards receive them over the WebSocket event stream and refresh the
// affected views.
package events

import (
	"context"
	"encoding/json"
	"log"
	"runtime/debug"
	"time"

	"agencydesk/internal/observability"

	"github.com/redis/go-redis/v9"
)

const adminChannel = "events:admin"

// Event types published by the API. Payloads carry the mutated entity's id
// and enough state for a dashboard to decide whether to refetch.
const (
	EventClaimSubmitted   = "claim.submitted"
	EventClaimReviewed    = "claim.reviewed"
	EventAgencyCreated    = "agency.created"
	EventAgencyUpdated    = "agency.updated"
	EventAgencyDeleted    = "agency.deleted"
	EventAgencyImported   = "agency.imported"
	EventUserRoleChanged  = "user.role_changed"
	EventUserDeleted      = "user.deleted"
	EventMessageModerated = "message.moderated"
)

// Notifier publishes admin events into Redis channels.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishAdmin sends a typed event to the admin broadcast channel. A nil
// Redis client makes this a no-op so tests and degraded deployments still run.
func (n *Notifier) PublishAdmin(ctx context.Context, eventType string, payload any) error {
	if n.rdb == nil {
		return nil
	}

	envelope := map[string]any{
		"type":         eventType,
		"payload":      payload,
		"published_at": time.Now().UTC().Format(time.RFC3339Nano),
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	if err := n.rdb.Publish(ctx, adminChannel, string(data)).Err(); err != nil {
		return err
	}
	observability.EventsPublishedTotal.WithLabelValues(eventType).Inc()
	return nil
}

// StartAdminSubscriber subscribes to the admin channel and calls onMessage
// for each incoming message until ctx is cancelled.
func (n *Notifier) StartAdminSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, adminChannel)
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in AdminSubscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}
