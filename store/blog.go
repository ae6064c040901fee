package store

import (
	"sort"
	"strings"
	"time"
)

// BlogPost is a news/blog article. Slug is the natural key.
type BlogPost struct {
	Slug               string     `json:"slug"`
	Title              string     `json:"title"`
	Excerpt            string     `json:"excerpt,omitempty"`
	Content            string     `json:"content"`
	Author             string     `json:"author,omitempty"`
	PublishedAt        time.Time  `json:"publishedAt"`
	FeaturedImage      string     `json:"featuredImage,omitempty"`
	Tags               []string   `json:"tags,omitempty"`
	Category           string     `json:"category,omitempty"`
	Status             string     `json:"status,omitempty"`
	ScheduledPublishAt *time.Time `json:"scheduledPublishAt,omitempty"`
}

// BlogPostUpdate carries a partial update. Nil fields keep their current
// value. Setting Status to "published" clears any pending schedule.
type BlogPostUpdate struct {
	Slug               *string    `json:"slug,omitempty"`
	Title              *string    `json:"title,omitempty"`
	Excerpt            *string    `json:"excerpt,omitempty"`
	Content            *string    `json:"content,omitempty"`
	Author             *string    `json:"author,omitempty"`
	PublishedAt        *time.Time `json:"publishedAt,omitempty"`
	FeaturedImage      *string    `json:"featuredImage,omitempty"`
	Tags               *[]string  `json:"tags,omitempty"`
	Category           *string    `json:"category,omitempty"`
	Status             *string    `json:"status,omitempty"`
	ScheduledPublishAt *time.Time `json:"scheduledPublishAt,omitempty"`
}

// BlogRepo provides CRUD over the blog post collection. Every list read runs
// the scheduled-post promotion and persists it before returning, so "a read
// can cause a write" is deliberate here.
type BlogRepo struct {
	col *collection
}

func (r *BlogRepo) loadLocked() []BlogPost {
	var posts []BlogPost
	r.col.load(&posts)
	return posts
}

// List returns posts ordered by publish date descending. With includeDrafts
// false only publicly visible posts are returned.
func (r *BlogRepo) List(includeDrafts bool) ([]BlogPost, error) {
	r.col.mu.Lock()
	defer r.col.mu.Unlock()

	now := time.Now()
	posts := r.loadLocked()
	if Promote(posts, now) {
		if err := r.col.save(posts); err != nil {
			return nil, err
		}
	}

	out := make([]BlogPost, 0, len(posts))
	for _, p := range posts {
		if includeDrafts || Visible(p, now) {
			out = append(out, p)
		}
	}
	sortPostsByDate(out)
	return out, nil
}

// Get returns a post by slug regardless of status. Callers on the public
// path filter with Visible.
func (r *BlogRepo) Get(slug string) (*BlogPost, error) {
	r.col.mu.Lock()
	defer r.col.mu.Unlock()

	for _, p := range r.loadLocked() {
		if p.Slug == slug {
			return &p, nil
		}
	}
	return nil, NotFound("blog post %q not found", slug)
}

// Create appends a new post. Status defaults to published; a scheduled post
// must carry a publish time, and its publishedAt is derived from it.
func (r *BlogRepo) Create(p BlogPost) (*BlogPost, error) {
	if strings.TrimSpace(p.Slug) == "" {
		return nil, Invalid("slug is required")
	}
	if strings.TrimSpace(p.Title) == "" {
		return nil, Invalid("title is required")
	}
	if p.Status == "" {
		p.Status = StatusPublished
	}
	if err := validatePostStatus(p.Status); err != nil {
		return nil, err
	}
	switch p.Status {
	case StatusScheduled:
		if p.ScheduledPublishAt == nil {
			return nil, Invalid("scheduled posts require scheduledPublishAt")
		}
		p.PublishedAt = *p.ScheduledPublishAt
	default:
		p.ScheduledPublishAt = nil
		if p.PublishedAt.IsZero() {
			p.PublishedAt = time.Now()
		}
	}

	r.col.mu.Lock()
	defer r.col.mu.Unlock()

	posts := r.loadLocked()
	for _, existing := range posts {
		if existing.Slug == p.Slug {
			return nil, Conflict("a post with slug %q already exists", p.Slug)
		}
	}
	posts = append(posts, p)
	if err := r.col.save(posts); err != nil {
		return nil, err
	}
	return &p, nil
}

// Update merges in over the post identified by slug. Changing the slug
// re-validates uniqueness against all other posts. A transition into
// published from any other state stamps publishedAt to now unless the caller
// supplied one.
func (r *BlogRepo) Update(slug string, in BlogPostUpdate) (*BlogPost, error) {
	if in.Status != nil {
		if err := validatePostStatus(*in.Status); err != nil {
			return nil, err
		}
	}

	r.col.mu.Lock()
	defer r.col.mu.Unlock()

	posts := r.loadLocked()
	idx := -1
	for i, p := range posts {
		if p.Slug == slug {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, NotFound("blog post %q not found", slug)
	}

	p := posts[idx]
	if in.Slug != nil && *in.Slug != p.Slug {
		if strings.TrimSpace(*in.Slug) == "" {
			return nil, Invalid("slug cannot be empty")
		}
		for i, other := range posts {
			if i != idx && other.Slug == *in.Slug {
				return nil, Conflict("a post with slug %q already exists", *in.Slug)
			}
		}
		p.Slug = *in.Slug
	}
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Excerpt != nil {
		p.Excerpt = *in.Excerpt
	}
	if in.Content != nil {
		p.Content = *in.Content
	}
	if in.Author != nil {
		p.Author = *in.Author
	}
	if in.FeaturedImage != nil {
		p.FeaturedImage = *in.FeaturedImage
	}
	if in.Tags != nil {
		p.Tags = *in.Tags
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.PublishedAt != nil {
		p.PublishedAt = *in.PublishedAt
	}
	if in.ScheduledPublishAt != nil {
		p.ScheduledPublishAt = in.ScheduledPublishAt
	}
	if in.Status != nil && *in.Status != p.Status {
		prev := p.Status
		p.Status = *in.Status
		switch p.Status {
		case StatusPublished:
			if prev != StatusPublished && prev != "" && in.PublishedAt == nil {
				p.PublishedAt = time.Now()
			}
			p.ScheduledPublishAt = nil
		case StatusScheduled:
			if p.ScheduledPublishAt == nil {
				return nil, Invalid("scheduled posts require scheduledPublishAt")
			}
			p.PublishedAt = *p.ScheduledPublishAt
		}
	}

	posts[idx] = p
	if err := r.col.save(posts); err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete removes a post by slug, reporting whether it existed.
func (r *BlogRepo) Delete(slug string) (bool, error) {
	r.col.mu.Lock()
	defer r.col.mu.Unlock()

	posts := r.loadLocked()
	for i, p := range posts {
		if p.Slug == slug {
			posts = append(posts[:i], posts[i+1:]...)
			if err := r.col.save(posts); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

func validatePostStatus(status string) error {
	switch status {
	case StatusDraft, StatusPublished, StatusScheduled:
		return nil
	}
	return Invalid("status must be one of draft, published, scheduled")
}

func sortPostsByDate(posts []BlogPost) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].PublishedAt.After(posts[j].PublishedAt)
	})
}
