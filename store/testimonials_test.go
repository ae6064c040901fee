package store

import "testing"

func TestTestimonialRatingBounds(t *testing.T) {
	s := newTestStore(t)

	for _, rating := range []int{0, 6, -1} {
		if _, err := s.Testimonials.Create(Testimonial{Name: "N", Content: "C", Rating: rating}); KindOf(err) != KindInvalid {
			t.Errorf("rating %d: expected invalid error, got %v", rating, err)
		}
	}
	for _, rating := range []int{1, 5} {
		if _, err := s.Testimonials.Create(Testimonial{Name: "N", Content: "C", Rating: rating}); err != nil {
			t.Errorf("rating %d: expected success, got %v", rating, err)
		}
	}
}

func TestTestimonialUpdateRatingBounds(t *testing.T) {
	s := newTestStore(t)

	created, err := s.Testimonials.Create(Testimonial{Name: "N", Content: "C", Rating: 4})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	bad := 6
	if _, err := s.Testimonials.Update(created.ID, TestimonialUpdate{Rating: &bad}); KindOf(err) != KindInvalid {
		t.Errorf("expected invalid error, got %v", err)
	}

	good := 5
	updated, err := s.Testimonials.Update(created.ID, TestimonialUpdate{Rating: &good})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Rating != 5 {
		t.Errorf("Rating = %d, want 5", updated.Rating)
	}
}

func TestTestimonialPartialUpdate(t *testing.T) {
	s := newTestStore(t)

	created, err := s.Testimonials.Create(Testimonial{Name: "Maya", Role: "Homeowner", Content: "Solid build", Rating: 5})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	company := "Maya & Co"
	updated, err := s.Testimonials.Update(created.ID, TestimonialUpdate{Company: &company})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Company != company {
		t.Errorf("Company = %q, want %q", updated.Company, company)
	}
	if updated.Name != "Maya" || updated.Rating != 5 {
		t.Errorf("untouched fields changed: %+v", updated)
	}
}

func TestTestimonialDelete(t *testing.T) {
	s := newTestStore(t)

	created, err := s.Testimonials.Create(Testimonial{Name: "N", Content: "C", Rating: 3})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	deleted, err := s.Testimonials.Delete(created.ID)
	if err != nil || !deleted {
		t.Fatalf("Delete = %v, %v; want true, nil", deleted, err)
	}
	if deleted, _ := s.Testimonials.Delete(created.ID); deleted {
		t.Error("second delete should report false")
	}
}
