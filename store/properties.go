package store

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Property construction/listing states and listing types.
const (
	PropertyOngoing   = "ongoing"
	PropertyCompleted = "completed"
	PropertyUpcoming  = "upcoming"

	TypeConstruction = "construction"
	TypeRent         = "rent"
	TypeSale         = "sale"
	TypeLand         = "land"
)

// Property is a project or listing. ID is generated; slug must also be
// unique because the public site addresses properties by slug.
type Property struct {
	ID            string    `json:"id"`
	Slug          string    `json:"slug"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	Location      string    `json:"location,omitempty"`
	Price         string    `json:"price,omitempty"`
	Status        string    `json:"status"`
	Type          string    `json:"type"`
	Images        []string  `json:"images"`
	FeaturedImage string    `json:"featuredImage,omitempty"`
	Bedrooms      *int      `json:"bedrooms,omitempty"`
	Bathrooms     *int      `json:"bathrooms,omitempty"`
	SquareFeet    *int      `json:"squareFeet,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// PropertyUpdate is a partial update; nil fields are left unchanged.
type PropertyUpdate struct {
	Slug          *string   `json:"slug,omitempty"`
	Title         *string   `json:"title,omitempty"`
	Description   *string   `json:"description,omitempty"`
	Location      *string   `json:"location,omitempty"`
	Price         *string   `json:"price,omitempty"`
	Status        *string   `json:"status,omitempty"`
	Type          *string   `json:"type,omitempty"`
	Images        *[]string `json:"images,omitempty"`
	FeaturedImage *string   `json:"featuredImage,omitempty"`
	Bedrooms      *int      `json:"bedrooms,omitempty"`
	Bathrooms     *int      `json:"bathrooms,omitempty"`
	SquareFeet    *int      `json:"squareFeet,omitempty"`
}

// PropertyFilter narrows List results; empty fields match everything.
type PropertyFilter struct {
	Status string
	Type   string
}

// PropertyRepo provides CRUD over the property collection.
type PropertyRepo struct {
	col *collection
}

func (r *PropertyRepo) loadLocked() []Property {
	var props []Property
	r.col.load(&props)
	return props
}

// List returns properties newest first, optionally filtered.
func (r *PropertyRepo) List(filter PropertyFilter) ([]Property, error) {
	r.col.mu.Lock()
	defer r.col.mu.Unlock()

	props := r.loadLocked()
	out := make([]Property, 0, len(props))
	for _, p := range props {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.Type != "" && p.Type != filter.Type {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Get returns a property by its generated id.
func (r *PropertyRepo) Get(id string) (*Property, error) {
	r.col.mu.Lock()
	defer r.col.mu.Unlock()

	for _, p := range r.loadLocked() {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, NotFound("property %q not found", id)
}

// GetBySlug returns a property by slug for public detail pages.
func (r *PropertyRepo) GetBySlug(slug string) (*Property, error) {
	r.col.mu.Lock()
	defer r.col.mu.Unlock()

	for _, p := range r.loadLocked() {
		if p.Slug == slug {
			return &p, nil
		}
	}
	return nil, NotFound("property %q not found", slug)
}

// Create assigns an id and timestamps, enforces slug uniqueness, and appends.
func (r *PropertyRepo) Create(p Property) (*Property, error) {
	if strings.TrimSpace(p.Slug) == "" {
		return nil, Invalid("slug is required")
	}
	if strings.TrimSpace(p.Title) == "" {
		return nil, Invalid("title is required")
	}
	if err := validatePropertyStatus(p.Status); err != nil {
		return nil, err
	}
	if err := validatePropertyType(p.Type); err != nil {
		return nil, err
	}
	if p.Images == nil {
		p.Images = []string{}
	}

	r.col.mu.Lock()
	defer r.col.mu.Unlock()

	props := r.loadLocked()
	for _, existing := range props {
		if existing.Slug == p.Slug {
			return nil, Conflict("a property with slug %q already exists", p.Slug)
		}
	}
	p.ID = uuid.NewString()
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	props = append(props, p)
	if err := r.col.save(props); err != nil {
		return nil, err
	}
	return &p, nil
}

// Update merges in over the property identified by id, refreshing updatedAt
// and leaving createdAt alone.
func (r *PropertyRepo) Update(id string, in PropertyUpdate) (*Property, error) {
	if in.Status != nil {
		if err := validatePropertyStatus(*in.Status); err != nil {
			return nil, err
		}
	}
	if in.Type != nil {
		if err := validatePropertyType(*in.Type); err != nil {
			return nil, err
		}
	}

	r.col.mu.Lock()
	defer r.col.mu.Unlock()

	props := r.loadLocked()
	idx := -1
	for i, p := range props {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, NotFound("property %q not found", id)
	}

	p := props[idx]
	if in.Slug != nil && *in.Slug != p.Slug {
		if strings.TrimSpace(*in.Slug) == "" {
			return nil, Invalid("slug cannot be empty")
		}
		for i, other := range props {
			if i != idx && other.Slug == *in.Slug {
				return nil, Conflict("a property with slug %q already exists", *in.Slug)
			}
		}
		p.Slug = *in.Slug
	}
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Location != nil {
		p.Location = *in.Location
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
	if in.Type != nil {
		p.Type = *in.Type
	}
	if in.Images != nil {
		p.Images = *in.Images
	}
	if in.FeaturedImage != nil {
		p.FeaturedImage = *in.FeaturedImage
	}
	if in.Bedrooms != nil {
		p.Bedrooms = in.Bedrooms
	}
	if in.Bathrooms != nil {
		p.Bathrooms = in.Bathrooms
	}
	if in.SquareFeet != nil {
		p.SquareFeet = in.SquareFeet
	}
	p.UpdatedAt = time.Now()

	props[idx] = p
	if err := r.col.save(props); err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete removes a property by id, reporting whether it existed.
func (r *PropertyRepo) Delete(id string) (bool, error) {
	r.col.mu.Lock()
	defer r.col.mu.Unlock()

	props := r.loadLocked()
	for i, p := range props {
		if p.ID == id {
			props = append(props[:i], props[i+1:]...)
			if err := r.col.save(props); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

func validatePropertyStatus(status string) error {
	switch status {
	case PropertyOngoing, PropertyCompleted, PropertyUpcoming:
		return nil
	}
	return Invalid("status must be one of ongoing, completed, upcoming")
}

func validatePropertyType(t string) error {
	switch t {
	case TypeConstruction, TypeRent, TypeSale, TypeLand:
		return nil
	}
	return Invalid("type must be one of construction, rent, sale, land")
}
