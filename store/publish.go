package store

import "time"

// Post publication states. An empty status on a record predates the
// scheduling feature and is treated as published.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusScheduled = "scheduled"
)

// Promote flips every scheduled post whose publish time has arrived to
// published, in place. The publish timestamp becomes the scheduled time, not
// the moment of promotion, so a post scheduled for Monday 09:00 that is first
// read on Tuesday still carries Monday's date. Returns whether anything
// changed so the caller knows to persist.
func Promote(posts []BlogPost, now time.Time) bool {
	changed := false
	for i := range posts {
		p := &posts[i]
		if p.Status != StatusScheduled || p.ScheduledPublishAt == nil {
			continue
		}
		if p.ScheduledPublishAt.After(now) {
			continue
		}
		p.PublishedAt = *p.ScheduledPublishAt
		p.ScheduledPublishAt = nil
		p.Status = StatusPublished
		changed = true
	}
	return changed
}

// Visible reports whether a post belongs on the public site at the given
// instant. Scheduled posts whose time has arrived count as visible even
// before Promote has persisted the transition.
func Visible(p BlogPost, now time.Time) bool {
	switch p.Status {
	case "", StatusPublished:
		return true
	case StatusScheduled:
		return p.ScheduledPublishAt != nil && !p.ScheduledPublishAt.After(now)
	default:
		return false
	}
}
