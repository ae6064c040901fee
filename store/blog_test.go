package store

import (
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func TestCreatePostDefaultsToPublished(t *testing.T) {
	s := newTestStore(t)

	created, err := s.Blog.Create(BlogPost{Slug: "opening-day", Title: "Opening Day", Content: "c"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Status != StatusPublished {
		t.Errorf("Status = %q, want published", created.Status)
	}
	if created.PublishedAt.IsZero() {
		t.Error("PublishedAt should be stamped on create")
	}
}

func TestCreatePostDuplicateSlug(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Blog.Create(BlogPost{Slug: "site-update", Title: "Site Update", Content: "a"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := s.Blog.Create(BlogPost{Slug: "site-update", Title: "Another", Content: "b"})
	if KindOf(err) != KindConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}

	// The store must be left unchanged by the failed create.
	posts, err := s.Blog.List(true)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(posts) != 1 {
		t.Errorf("post count = %d, want 1", len(posts))
	}
	if posts[0].Title != "Site Update" {
		t.Errorf("surviving post title = %q, want the original", posts[0].Title)
	}
}

func TestCreateScheduledPostRequiresTime(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Blog.Create(BlogPost{Slug: "later", Title: "Later", Content: "c", Status: StatusScheduled})
	if KindOf(err) != KindInvalid {
		t.Fatalf("expected invalid error, got %v", err)
	}
}

func TestScheduledPostPromotionPersists(t *testing.T) {
	s := newTestStore(t)

	past := time.Now().Add(-time.Hour)
	if _, err := s.Blog.Create(BlogPost{
		Slug: "ribbon-cutting", Title: "Ribbon Cutting", Content: "c",
		Status: StatusScheduled, ScheduledPublishAt: &past,
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	posts, err := s.Blog.List(false)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("expected promoted post in public list, got %d posts", len(posts))
	}
	if posts[0].Status != StatusPublished {
		t.Errorf("Status = %q, want published", posts[0].Status)
	}
	if posts[0].ScheduledPublishAt != nil {
		t.Errorf("ScheduledPublishAt should be cleared, got %v", posts[0].ScheduledPublishAt)
	}
	if !posts[0].PublishedAt.Equal(past) {
		t.Errorf("PublishedAt = %v, want the scheduled time %v", posts[0].PublishedAt, past)
	}

	// The promotion must have been written through, not just filtered.
	s2, err := Open(s.Dir())
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	got, err := s2.Blog.Get("ribbon-cutting")
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if got.Status != StatusPublished || got.ScheduledPublishAt != nil {
		t.Errorf("promotion not persisted: status=%q scheduledPublishAt=%v", got.Status, got.ScheduledPublishAt)
	}
}

func TestFutureScheduledPostHidden(t *testing.T) {
	s := newTestStore(t)

	future := time.Now().Add(time.Hour)
	if _, err := s.Blog.Create(BlogPost{
		Slug: "next-phase", Title: "Next Phase", Content: "c",
		Status: StatusScheduled, ScheduledPublishAt: &future,
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	public, err := s.Blog.List(false)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(public) != 0 {
		t.Errorf("future-scheduled post leaked into public list: %+v", public)
	}

	all, err := s.Blog.List(true)
	if err != nil {
		t.Fatalf("List(true) failed: %v", err)
	}
	if len(all) != 1 || all[0].Status != StatusScheduled {
		t.Errorf("admin list should keep the post scheduled, got %+v", all)
	}
}

func TestDraftHiddenFromPublicList(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Blog.Create(BlogPost{Slug: "wip", Title: "WIP", Content: "c", Status: StatusDraft}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	public, err := s.Blog.List(false)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(public) != 0 {
		t.Errorf("draft leaked into public list: %+v", public)
	}
}

func TestPublishingDraftStampsPublishedAt(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Blog.Create(BlogPost{Slug: "draft-post", Title: "Draft", Content: "c", Status: StatusDraft}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	before := time.Now()
	updated, err := s.Blog.Update("draft-post", BlogPostUpdate{Status: strPtr(StatusPublished)})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Status != StatusPublished {
		t.Errorf("Status = %q, want published", updated.Status)
	}
	if updated.PublishedAt.Before(before.Add(-time.Second)) {
		t.Errorf("PublishedAt = %v, want stamped to now", updated.PublishedAt)
	}
}

func TestPublishingDraftKeepsExplicitDate(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Blog.Create(BlogPost{Slug: "backdated", Title: "Backdated", Content: "c", Status: StatusDraft}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	explicit := time.Date(2024, 11, 2, 8, 0, 0, 0, time.UTC)
	updated, err := s.Blog.Update("backdated", BlogPostUpdate{
		Status:      strPtr(StatusPublished),
		PublishedAt: &explicit,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if !updated.PublishedAt.Equal(explicit) {
		t.Errorf("PublishedAt = %v, want caller-supplied %v", updated.PublishedAt, explicit)
	}
}

func TestUpdateSlugUniqueness(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Blog.Create(BlogPost{Slug: "first", Title: "First", Content: "c"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := s.Blog.Create(BlogPost{Slug: "second", Title: "Second", Content: "c"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err := s.Blog.Update("second", BlogPostUpdate{Slug: strPtr("first")})
	if KindOf(err) != KindConflict {
		t.Fatalf("expected conflict renaming onto an existing slug, got %v", err)
	}

	// Renaming onto itself is fine.
	if _, err := s.Blog.Update("second", BlogPostUpdate{Slug: strPtr("second"), Title: strPtr("Second, revised")}); err != nil {
		t.Fatalf("self-rename failed: %v", err)
	}
}

func TestUpdateMissingPost(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Blog.Update("ghost", BlogPostUpdate{Title: strPtr("Ghost")})
	if KindOf(err) != KindNotFound {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestDeletePostIdempotence(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Blog.Create(BlogPost{Slug: "temp", Title: "Temp", Content: "c"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	deleted, err := s.Blog.Delete("temp")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !deleted {
		t.Error("first delete should report true")
	}

	deleted, err = s.Blog.Delete("temp")
	if err != nil {
		t.Fatalf("second Delete failed: %v", err)
	}
	if deleted {
		t.Error("second delete should report false")
	}

	posts, err := s.Blog.List(true)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(posts) != 0 {
		t.Errorf("post count = %d, want 0", len(posts))
	}
}

func TestListOrdersByPublishDateDesc(t *testing.T) {
	s := newTestStore(t)

	dates := map[string]time.Time{
		"oldest": time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		"newest": time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		"middle": time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	for slug, d := range dates {
		if _, err := s.Blog.Create(BlogPost{Slug: slug, Title: slug, Content: "c", PublishedAt: d}); err != nil {
			t.Fatalf("Create %s failed: %v", slug, err)
		}
	}

	posts, err := s.Blog.List(false)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []string{"newest", "middle", "oldest"}
	for i, slug := range want {
		if posts[i].Slug != slug {
			t.Errorf("posts[%d] = %q, want %q", i, posts[i].Slug, slug)
		}
	}
}
