// Package store persists transit links and the cached tool version in a
// key-value driver.
package store

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ikmich/package-deps-admin/internal/api"
	"github.com/ikmich/package-deps-admin/internal/config"
	"github.com/ikmich/package-deps-admin/internal/store/kv"
)

// Keys used in the store.
const (
	KeyVersion      = "version"
	KeyTransitLinks = "transit_links"
)

// Store is safe for use from several goroutines; operations do not
// interleave.
type Store struct {
	mu sync.Mutex
	kv kv.KV

	// OnReadError is called when a key exists but cannot be read or
	// decoded. Such reads still report the key as absent.
	OnReadError func(key string, err error)
}

func New(k kv.KV) *Store {
	return &Store{kv: k}
}

// Open opens the store configured by cfg.
func Open(cfg config.Config) (*Store, error) {
	location, err := cfg.StoreLocation()
	if err != nil {
		return nil, err
	}
	k, err := kv.Open(cfg.StoreDriver, location)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", api.ErrStoreRead, err)
	}
	return New(k), nil
}

func (st *Store) Close() error {
	return st.kv.Close()
}

func (st *Store) readError(key string, err error) {
	if st.OnReadError != nil {
		st.OnReadError(key, fmt.Errorf("%w: %s: %s", api.ErrStoreRead, key, err))
	}
}

func (st *Store) get(key string, v interface{}) bool {
	value, ok, err := st.kv.Get(key)
	if err != nil {
		st.readError(key, err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(value, v); err != nil {
		st.readError(key, err)
		return false
	}
	return true
}

func (st *Store) set(key string, v interface{}) error {
	value, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return st.kv.Set(key, value)
}

// Get decodes the value under key into v. It returns false if the key
// is missing or unreadable.
func (st *Store) Get(key string, v interface{}) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.get(key, v)
}

// Set encodes v as JSON under key.
func (st *Store) Set(key string, v interface{}) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.set(key, v)
}

func (st *Store) links() []api.TransitLink {
	links := []api.TransitLink{}
	if !st.get(KeyTransitLinks, &links) || links == nil {
		return []api.TransitLink{}
	}
	return links
}

// GetLinks returns every saved link.
func (st *Store) GetLinks() []api.TransitLink {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.links()
}

// SaveLink stores link, replacing any link with the same ID.
func (st *Store) SaveLink(link api.TransitLink) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	links := withoutLink(st.links(), link.ID)
	links = append(links, link)
	return st.set(KeyTransitLinks, links)
}

// FindLink returns the link from the package named sourceName into the
// package named destName.
func (st *Store) FindLink(sourceName, destName string) (api.TransitLink, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	id := api.LinkID(sourceName, destName)
	for _, link := range st.links() {
		if link.ID == id {
			return link, true
		}
	}
	return api.TransitLink{}, false
}

// RemoveLink deletes the link with id. Removing an unknown id does
// nothing.
func (st *Store) RemoveLink(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	links := st.links()
	kept := withoutLink(links, id)
	if len(kept) == len(links) {
		return nil
	}
	return st.set(KeyTransitLinks, kept)
}

func withoutLink(links []api.TransitLink, id string) []api.TransitLink {
	kept := []api.TransitLink{}
	for _, link := range links {
		if link.ID != id {
			kept = append(kept, link)
		}
	}
	return kept
}
