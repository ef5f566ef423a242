// Package priority tracks user-requested focus topics on a note. A
// topic stays active until it has been addressed in two sessions, then
// deactivates permanently; the entry is kept for history.
package priority

import (
	"strings"
	"time"

	"github.com/conorfennell/learnbase/internal/domain"
)

// addressedThreshold is the number of sessions after which an active
// request deactivates.
const addressedThreshold = 2

func normalize(topic string) string {
	return strings.ToLower(strings.TrimSpace(topic))
}

// Register adds a new focus-topic request. If an active request for the
// same normalized topic already exists, its reason and provenance are
// refreshed instead of creating a duplicate. Re-requesting a topic
// whose earlier entry was deactivated creates a fresh active entry.
func Register(requests []domain.PriorityRequest, topic, reason, sessionID string, now time.Time) []domain.PriorityRequest {
	if normalize(topic) == "" {
		return requests
	}
	if reason == "" {
		reason = "User requested focus on this area"
	}

	for i := range requests {
		if requests[i].Active && normalize(requests[i].Topic) == normalize(topic) {
			requests[i].Reason = reason
			requests[i].RequestedAt = now
			requests[i].SessionID = sessionID
			return requests
		}
	}

	return append(requests, domain.PriorityRequest{
		Topic:       topic,
		Reason:      reason,
		RequestedAt: now,
		SessionID:   sessionID,
		Active:      true,
	})
}

// MarkAddressed increments the addressed count of the first active
// entry matching each topic. An entry reaching the threshold flips
// inactive in the same call. Each topic credits at most one entry.
func MarkAddressed(requests []domain.PriorityRequest, topics []string) []domain.PriorityRequest {
	for _, topic := range topics {
		for i := range requests {
			if requests[i].Active && normalize(requests[i].Topic) == normalize(topic) {
				requests[i].TimesAddressed++
				if requests[i].TimesAddressed >= addressedThreshold {
					requests[i].Active = false
				}
				break
			}
		}
	}
	return requests
}

// Covered returns the active topics that appear in any of the session's
// question texts, using case-insensitive substring containment. A topic
// matched by several questions is credited once, on its first match.
func Covered(requests []domain.PriorityRequest, questionTexts []string) []string {
	var covered []string
	for _, req := range requests {
		if !req.Active {
			continue
		}
		topic := normalize(req.Topic)
		if topic == "" {
			continue
		}
		for _, text := range questionTexts {
			if strings.Contains(strings.ToLower(text), topic) {
				covered = append(covered, req.Topic)
				break
			}
		}
	}
	return covered
}

// Active returns the currently active requests in registration order.
func Active(requests []domain.PriorityRequest) []domain.PriorityRequest {
	var active []domain.PriorityRequest
	for _, req := range requests {
		if req.Active {
			active = append(active, req)
		}
	}
	return active
}
