package store

import (
	"testing"
	"time"
)

func TestPromoteDuePost(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	due := now.Add(-time.Hour)
	posts := []BlogPost{
		{Slug: "due", Status: StatusScheduled, ScheduledPublishAt: &due},
	}

	if !Promote(posts, now) {
		t.Fatal("expected Promote to report a change")
	}
	p := posts[0]
	if p.Status != StatusPublished {
		t.Errorf("Status = %q, want published", p.Status)
	}
	if !p.PublishedAt.Equal(due) {
		t.Errorf("PublishedAt = %v, want the scheduled time %v", p.PublishedAt, due)
	}
	if p.ScheduledPublishAt != nil {
		t.Errorf("ScheduledPublishAt should be cleared, got %v", p.ScheduledPublishAt)
	}
}

func TestPromoteLeavesFuturePostAlone(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)
	posts := []BlogPost{
		{Slug: "future", Status: StatusScheduled, ScheduledPublishAt: &future},
	}

	if Promote(posts, now) {
		t.Fatal("Promote should not change a future-scheduled post")
	}
	if posts[0].Status != StatusScheduled {
		t.Errorf("Status = %q, want scheduled", posts[0].Status)
	}
	if posts[0].ScheduledPublishAt == nil || !posts[0].ScheduledPublishAt.Equal(future) {
		t.Errorf("ScheduledPublishAt changed: %v", posts[0].ScheduledPublishAt)
	}
}

func TestPromoteIgnoresOtherStates(t *testing.T) {
	now := time.Now()
	posts := []BlogPost{
		{Slug: "draft", Status: StatusDraft},
		{Slug: "published", Status: StatusPublished},
		{Slug: "legacy"},
		{Slug: "broken", Status: StatusScheduled}, // scheduled with no time
	}
	if Promote(posts, now) {
		t.Fatal("Promote should not touch drafts, published, or legacy posts")
	}
}

func TestVisible(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	tests := []struct {
		name string
		post BlogPost
		want bool
	}{
		{"published", BlogPost{Status: StatusPublished}, true},
		{"legacy empty status", BlogPost{}, true},
		{"draft", BlogPost{Status: StatusDraft}, false},
		{"scheduled due", BlogPost{Status: StatusScheduled, ScheduledPublishAt: &past}, true},
		{"scheduled exactly now", BlogPost{Status: StatusScheduled, ScheduledPublishAt: &now}, true},
		{"scheduled future", BlogPost{Status: StatusScheduled, ScheduledPublishAt: &future}, false},
		{"scheduled without time", BlogPost{Status: StatusScheduled}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Visible(tt.post, now); got != tt.want {
				t.Errorf("Visible() = %v, want %v", got, tt.want)
			}
		})
	}
}
