package store

import (
	"strings"

	"github.com/google/uuid"
)

// Testimonial is a client quote shown on the public site.
type Testimonial struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Role    string `json:"role,omitempty"`
	Company string `json:"company,omitempty"`
	Content string `json:"content"`
	Image   string `json:"image,omitempty"`
	Rating  int    `json:"rating"`
}

// TestimonialUpdate is a partial update; nil fields are left unchanged.
type TestimonialUpdate struct {
	Name    *string `json:"name,omitempty"`
	Role    *string `json:"role,omitempty"`
	Company *string `json:"company,omitempty"`
	Content *string `json:"content,omitempty"`
	Image   *string `json:"image,omitempty"`
	Rating  *int    `json:"rating,omitempty"`
}

// TestimonialRepo provides CRUD over the testimonial collection.
type TestimonialRepo struct {
	col *collection
}

func (r *TestimonialRepo) loadLocked() []Testimonial {
	var items []Testimonial
	r.col.load(&items)
	return items
}

// List returns all testimonials in file order.
func (r *TestimonialRepo) List() ([]Testimonial, error) {
	r.col.mu.Lock()
	defer r.col.mu.Unlock()
	return r.loadLocked(), nil
}

// Get returns a testimonial by id.
func (r *TestimonialRepo) Get(id string) (*Testimonial, error) {
	r.col.mu.Lock()
	defer r.col.mu.Unlock()

	for _, t := range r.loadLocked() {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, NotFound("testimonial %q not found", id)
}

// Create assigns an id and appends. Rating must be between 1 and 5.
func (r *TestimonialRepo) Create(t Testimonial) (*Testimonial, error) {
	if strings.TrimSpace(t.Name) == "" {
		return nil, Invalid("name is required")
	}
	if strings.TrimSpace(t.Content) == "" {
		return nil, Invalid("content is required")
	}
	if err := validateRating(t.Rating); err != nil {
		return nil, err
	}

	r.col.mu.Lock()
	defer r.col.mu.Unlock()

	items := r.loadLocked()
	t.ID = uuid.NewString()
	items = append(items, t)
	if err := r.col.save(items); err != nil {
		return nil, err
	}
	return &t, nil
}

// Update merges in over the testimonial identified by id.
func (r *TestimonialRepo) Update(id string, in TestimonialUpdate) (*Testimonial, error) {
	if in.Rating != nil {
		if err := validateRating(*in.Rating); err != nil {
			return nil, err
		}
	}

	r.col.mu.Lock()
	defer r.col.mu.Unlock()

	items := r.loadLocked()
	for i, t := range items {
		if t.ID != id {
			continue
		}
		if in.Name != nil {
			t.Name = *in.Name
		}
		if in.Role != nil {
			t.Role = *in.Role
		}
		if in.Company != nil {
			t.Company = *in.Company
		}
		if in.Content != nil {
			t.Content = *in.Content
		}
		if in.Image != nil {
			t.Image = *in.Image
		}
		if in.Rating != nil {
			t.Rating = *in.Rating
		}
		items[i] = t
		if err := r.col.save(items); err != nil {
			return nil, err
		}
		return &t, nil
	}
	return nil, NotFound("testimonial %q not found", id)
}

// Delete removes a testimonial by id, reporting whether it existed.
func (r *TestimonialRepo) Delete(id string) (bool, error) {
	r.col.mu.Lock()
	defer r.col.mu.Unlock()

	items := r.loadLocked()
	for i, t := range items {
		if t.ID == id {
			items = append(items[:i], items[i+1:]...)
			if err := r.col.save(items); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

func validateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return Invalid("rating must be between 1 and 5")
	}
	return nil
}
