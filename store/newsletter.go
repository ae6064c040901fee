package store

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Subscriber is a newsletter signup. At most one active (not unsubscribed)
// record exists per email, matched case-insensitively. The verification
// token is single-use: consuming it sets it to nil.
type Subscriber struct {
	ID                string     `json:"id"`
	Email             string     `json:"email"`
	Verified          bool       `json:"verified"`
	VerificationToken *string    `json:"verificationToken,omitempty"`
	VerifiedAt        *time.Time `json:"verifiedAt,omitempty"`
	SubscribedAt      time.Time  `json:"subscribedAt"`
	UnsubscribedAt    *time.Time `json:"unsubscribedAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// NewsletterRepo manages the subscriber collection.
type NewsletterRepo struct {
	col *collection
}

func (r *NewsletterRepo) loadLocked() []Subscriber {
	var subs []Subscriber
	r.col.load(&subs)
	return subs
}

// List returns every subscriber record, including unsubscribed history.
func (r *NewsletterRepo) List() ([]Subscriber, error) {
	r.col.mu.Lock()
	defer r.col.mu.Unlock()
	return r.loadLocked(), nil
}

// GetByEmail returns the active record for an email, if any.
func (r *NewsletterRepo) GetByEmail(email string) (*Subscriber, error) {
	email = normalizeEmail(email)

	r.col.mu.Lock()
	defer r.col.mu.Unlock()

	for _, s := range r.loadLocked() {
		if s.UnsubscribedAt == nil && normalizeEmail(s.Email) == email {
			return &s, nil
		}
	}
	return nil, NotFound("no active subscription for %q", email)
}

// Subscribe registers an email. A new signup gets a fresh verification
// token; re-subscribing an unverified email rotates its token; an already
// verified email is returned as-is. The second return value reports whether
// a verification token is pending (i.e. an email should be sent).
func (r *NewsletterRepo) Subscribe(email string) (*Subscriber, bool, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, false, Invalid("invalid email address")
	}

	r.col.mu.Lock()
	defer r.col.mu.Unlock()

	now := time.Now()
	subs := r.loadLocked()
	for i, s := range subs {
		if s.UnsubscribedAt != nil || normalizeEmail(s.Email) != email {
			continue
		}
		if s.Verified {
			return &s, false, nil
		}
		token := uuid.NewString()
		subs[i].VerificationToken = &token
		subs[i].SubscribedAt = now
		subs[i].UpdatedAt = now
		if err := r.col.save(subs); err != nil {
			return nil, false, err
		}
		return &subs[i], true, nil
	}

	token := uuid.NewString()
	sub := Subscriber{
		ID:                uuid.NewString(),
		Email:             email,
		Verified:          false,
		VerificationToken: &token,
		SubscribedAt:      now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	subs = append(subs, sub)
	if err := r.col.save(subs); err != nil {
		return nil, false, err
	}
	return &sub, true, nil
}

// Verify consumes a verification token. A token that was never issued, or
// was already consumed, yields not-found.
func (r *NewsletterRepo) Verify(token string) (*Subscriber, error) {
	if token == "" {
		return nil, Invalid("token is required")
	}

	r.col.mu.Lock()
	defer r.col.mu.Unlock()

	subs := r.loadLocked()
	for i, s := range subs {
		if s.VerificationToken == nil || *s.VerificationToken != token {
			continue
		}
		now := time.Now()
		subs[i].Verified = true
		subs[i].VerifiedAt = &now
		subs[i].VerificationToken = nil
		subs[i].UpdatedAt = now
		if err := r.col.save(subs); err != nil {
			return nil, err
		}
		return &subs[i], nil
	}
	return nil, NotFound("invalid or expired verification token")
}

// Unsubscribe stamps the active record for email, freeing the address for a
// future fresh subscription. Reports whether an active record existed.
func (r *NewsletterRepo) Unsubscribe(email string) (bool, error) {
	email = normalizeEmail(email)

	r.col.mu.Lock()
	defer r.col.mu.Unlock()

	subs := r.loadLocked()
	for i, s := range subs {
		if s.UnsubscribedAt != nil || normalizeEmail(s.Email) != email {
			continue
		}
		now := time.Now()
		subs[i].UnsubscribedAt = &now
		subs[i].UpdatedAt = now
		if err := r.col.save(subs); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
