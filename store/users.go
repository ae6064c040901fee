package store

import (
	"crypto/subtle"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Admin roles and the permission tags protected routes check for.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"

	PermBlogWrite         = "blog:write"
	PermPropertiesWrite   = "properties:write"
	PermTestimonialsWrite = "testimonials:write"
	PermUsersManage       = "users:manage"
	PermAnalyticsView     = "analytics:view"
)

// AllPermissions returns every permission tag, for seeding the default admin.
func AllPermissions() []string {
	return []string{
		PermBlogWrite,
		PermPropertiesWrite,
		PermTestimonialsWrite,
		PermUsersManage,
		PermAnalyticsView,
	}
}

// AdminUser is a staff account. Usernames are unique case-insensitively.
// Passwords are stored as plain text, faithfully to the system this backend
// replaces; hashing is a known open item, not an oversight of this file.
type AdminUser struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Password    string     `json:"password,omitempty"`
	Role        string     `json:"role"`
	Permissions []string   `json:"permissions"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastLogin   *time.Time `json:"lastLogin,omitempty"`
}

// Redacted returns a copy safe to serialize in responses.
func (u AdminUser) Redacted() AdminUser {
	u.Password = ""
	return u
}

// HasPermission reports whether the user carries the given tag.
func (u AdminUser) HasPermission(perm string) bool {
	for _, p := range u.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

// AdminUserUpdate is a partial update; nil fields are left unchanged.
type AdminUserUpdate struct {
	Username    *string   `json:"username,omitempty"`
	Password    *string   `json:"password,omitempty"`
	Role        *string   `json:"role,omitempty"`
	Permissions *[]string `json:"permissions,omitempty"`
}

// UserRepo provides CRUD and authentication over the admin user collection.
type UserRepo struct {
	col *collection
}

func (r *UserRepo) loadLocked() []AdminUser {
	var users []AdminUser
	r.col.load(&users)
	return users
}

// List returns all users with passwords redacted.
func (r *UserRepo) List() ([]AdminUser, error) {
	r.col.mu.Lock()
	defer r.col.mu.Unlock()

	users := r.loadLocked()
	out := make([]AdminUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Redacted())
	}
	return out, nil
}

// Get returns a user by id, password redacted.
func (r *UserRepo) Get(id string) (*AdminUser, error) {
	r.col.mu.Lock()
	defer r.col.mu.Unlock()

	for _, u := range r.loadLocked() {
		if u.ID == id {
			u = u.Redacted()
			return &u, nil
		}
	}
	return nil, NotFound("user %q not found", id)
}

// GetByUsername returns a user, including the stored password, for
// authentication. The lookup is case-insensitive.
func (r *UserRepo) GetByUsername(username string) (*AdminUser, error) {
	r.col.mu.Lock()
	defer r.col.mu.Unlock()

	for _, u := range r.loadLocked() {
		if strings.EqualFold(u.Username, username) {
			return &u, nil
		}
	}
	return nil, NotFound("user %q not found", username)
}

// Create validates credentials, enforces case-insensitive username
// uniqueness, assigns an id, and appends.
func (r *UserRepo) Create(u AdminUser) (*AdminUser, error) {
	if err := validateCredentials(u.Username, u.Password); err != nil {
		return nil, err
	}
	if u.Role == "" {
		u.Role = RoleEditor
	}
	if err := validateRole(u.Role); err != nil {
		return nil, err
	}
	if u.Permissions == nil {
		u.Permissions = []string{}
	}

	r.col.mu.Lock()
	defer r.col.mu.Unlock()

	users := r.loadLocked()
	for _, existing := range users {
		if strings.EqualFold(existing.Username, u.Username) {
			return nil, Conflict("username %q is already taken", u.Username)
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	users = append(users, u)
	if err := r.col.save(users); err != nil {
		return nil, err
	}
	redacted := u.Redacted()
	return &redacted, nil
}

// Update merges in over the user identified by id. Username changes
// re-validate uniqueness against all other users.
func (r *UserRepo) Update(id string, in AdminUserUpdate) (*AdminUser, error) {
	if in.Username != nil && len(strings.TrimSpace(*in.Username)) < 3 {
		return nil, Invalid("username must be at least 3 characters")
	}
	if in.Password != nil && len(*in.Password) < 3 {
		return nil, Invalid("password must be at least 3 characters")
	}
	if in.Role != nil {
		if err := validateRole(*in.Role); err != nil {
			return nil, err
		}
	}

	r.col.mu.Lock()
	defer r.col.mu.Unlock()

	users := r.loadLocked()
	idx := -1
	for i, u := range users {
		if u.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, NotFound("user %q not found", id)
	}

	u := users[idx]
	if in.Username != nil && !strings.EqualFold(*in.Username, u.Username) {
		for i, other := range users {
			if i != idx && strings.EqualFold(other.Username, *in.Username) {
				return nil, Conflict("username %q is already taken", *in.Username)
			}
		}
	}
	if in.Username != nil {
		u.Username = *in.Username
	}
	if in.Password != nil {
		u.Password = *in.Password
	}
	if in.Role != nil {
		u.Role = *in.Role
	}
	if in.Permissions != nil {
		u.Permissions = *in.Permissions
	}

	users[idx] = u
	if err := r.col.save(users); err != nil {
		return nil, err
	}
	redacted := u.Redacted()
	return &redacted, nil
}

// Delete removes a user by id, reporting whether it existed.
func (r *UserRepo) Delete(id string) (bool, error) {
	r.col.mu.Lock()
	defer r.col.mu.Unlock()

	users := r.loadLocked()
	for i, u := range users {
		if u.ID == id {
			users = append(users[:i], users[i+1:]...)
			if err := r.col.save(users); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// Authenticate checks credentials in constant time and stamps lastLogin on
// success. Returns a redacted user, or a not-found error for either a
// missing user or a wrong password so callers cannot distinguish the two.
func (r *UserRepo) Authenticate(username, password string) (*AdminUser, error) {
	r.col.mu.Lock()
	defer r.col.mu.Unlock()

	users := r.loadLocked()
	for i, u := range users {
		if !strings.EqualFold(u.Username, username) {
			continue
		}
		if subtle.ConstantTimeCompare([]byte(u.Password), []byte(password)) != 1 {
			return nil, NotFound("invalid credentials")
		}
		now := time.Now()
		users[i].LastLogin = &now
		if err := r.col.save(users); err != nil {
			return nil, err
		}
		redacted := users[i].Redacted()
		return &redacted, nil
	}
	return nil, NotFound("invalid credentials")
}

// EnsureDefaultAdmin creates the bootstrap "admin" account with every
// permission if no user with that name exists. Called once at process start;
// safe to call again.
func (r *UserRepo) EnsureDefaultAdmin(password string) error {
	r.col.mu.Lock()
	defer r.col.mu.Unlock()

	users := r.loadLocked()
	for _, u := range users {
		if strings.EqualFold(u.Username, "admin") {
			return nil
		}
	}
	users = append(users, AdminUser{
		ID:          uuid.NewString(),
		Username:    "admin",
		Password:    password,
		Role:        RoleAdmin,
		Permissions: AllPermissions(),
		CreatedAt:   time.Now(),
	})
	return r.col.save(users)
}

func validateCredentials(username, password string) error {
	if len(strings.TrimSpace(username)) < 3 {
		return Invalid("username must be at least 3 characters")
	}
	if len(password) < 3 {
		return Invalid("password must be at least 3 characters")
	}
	return nil
}

func validateRole(role string) error {
	switch role {
	case RoleAdmin, RoleEditor:
		return nil
	}
	return Invalid("role must be admin or editor")
}
