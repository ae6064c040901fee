package ridgeline

import (
	"net/url"
	"path"
	"strings"

	"github.com/ridgelinebuilders/ridgeline/store"
)

// Slugify converts a title to a URL-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// BuildURL joins a base URL with path segments.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	return u.String()
}

// FilterEmpty removes empty/whitespace-only strings from a slice.
func FilterEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// FilterPostsByTag keeps posts carrying the given tag, case-insensitively.
func FilterPostsByTag(posts []store.BlogPost, tag string) []store.BlogPost {
	tag = strings.ToLower(strings.TrimSpace(tag))
	out := make([]store.BlogPost, 0, len(posts))
	for _, p := range posts {
		for _, t := range p.Tags {
			if strings.ToLower(strings.TrimSpace(t)) == tag {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// RelatedPosts finds up to max posts sharing a tag or the category with
// current. Tag matches rank ahead of category-only matches because posts
// arrives sorted newest-first and we scan in order.
func RelatedPosts(current store.BlogPost, posts []store.BlogPost, max int) []store.BlogPost {
	tagSet := make(map[string]struct{})
	for _, t := range current.Tags {
		if tag := strings.ToLower(strings.TrimSpace(t)); tag != "" {
			tagSet[tag] = struct{}{}
		}
	}

	related := make([]store.BlogPost, 0, max)
	add := func(p store.BlogPost) bool {
		related = append(related, p)
		return len(related) >= max
	}
	seen := map[string]struct{}{current.Slug: {}}

	for _, p := range posts {
		if _, dup := seen[p.Slug]; dup {
			continue
		}
		for _, t := range p.Tags {
			if _, ok := tagSet[strings.ToLower(strings.TrimSpace(t))]; ok {
				seen[p.Slug] = struct{}{}
				if add(p) {
					return related
				}
				break
			}
		}
	}
	if current.Category != "" {
		for _, p := range posts {
			if _, dup := seen[p.Slug]; dup {
				continue
			}
			if p.Category == current.Category {
				seen[p.Slug] = struct{}{}
				if add(p) {
					return related
				}
			}
		}
	}
	return related
}
