// Package store persists site content as JSON array files, one file per
// entity type, under a single data directory. Each collection serializes its
// read-modify-write cycles through a mutex, so concurrent requests within one
// process cannot clobber each other's writes. Nothing guards against a second
// process writing the same files; last write wins there.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// Store bundles the typed repositories for every entity the site persists.
type Store struct {
	dir string

	Blog         *BlogRepo
	Properties   *PropertyRepo
	Testimonials *TestimonialRepo
	Users        *UserRepo
	Newsletter   *NewsletterRepo
}

// Open ensures the data directory exists and returns a Store whose
// repositories read and write JSON files inside it.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	s := &Store{dir: dir}
	s.Blog = &BlogRepo{col: s.collection("blog-posts.json")}
	s.Properties = &PropertyRepo{col: s.collection("properties.json")}
	s.Testimonials = &TestimonialRepo{col: s.collection("testimonials.json")}
	s.Users = &UserRepo{col: s.collection("users.json")}
	s.Newsletter = &NewsletterRepo{col: s.collection("newsletter-subscribers.json")}
	return s, nil
}

// Dir returns the data directory the store was opened on.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) collection(name string) *collection {
	return &collection{path: filepath.Join(s.dir, name)}
}

// collection is one JSON array file plus the mutex that serializes access.
type collection struct {
	mu   sync.Mutex
	path string
}

// load reads the file into dst (a pointer to a slice). A missing file or a
// file that fails to parse yields an empty slice: readers degrade to "no
// data" rather than failing the request.
func (c *collection) load(dst any) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return
	}
	_ = json.Unmarshal(data, dst)
}

// save writes v as pretty-printed JSON. The write goes to a temp file in the
// same directory followed by a rename, so readers never observe a torn file.
func (c *collection) save(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(c.path), filepath.Base(c.path)+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), c.path)
}
