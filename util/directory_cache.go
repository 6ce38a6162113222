package util

import (
	"strings"
	"sync"
	"time"

	"github.com/otscheduler/portal/model"
	cache "github.com/patrickmn/go-cache"
)

const doctorListKey = "doctors"

var (
	directoryCache   *cache.Cache
	directoryCacheMu sync.RWMutex
)

// InitDirectoryCache sets up the doctor directory cache. A non-positive ttl
// disables caching.
func InitDirectoryCache(ttl time.Duration) {
	directoryCacheMu.Lock()
	defer directoryCacheMu.Unlock()
	if ttl <= 0 {
		directoryCache = nil
		return
	}
	directoryCache = cache.New(ttl, 2*ttl)
}

func getDirectoryCache() *cache.Cache {
	directoryCacheMu.RLock()
	defer directoryCacheMu.RUnlock()
	return directoryCache
}

func doctorKey(email string) string {
	return "doctor:" + strings.ToLower(strings.TrimSpace(email))
}

// CachedDoctors returns the cached doctor listing.
func CachedDoctors() ([]model.Account, bool) {
	c := getDirectoryCache()
	if c == nil {
		return nil, false
	}
	v, ok := c.Get(doctorListKey)
	if !ok {
		return nil, false
	}
	doctors, ok := v.([]model.Account)
	return doctors, ok
}

// CacheDoctors stores the doctor listing and indexes each doctor by email.
func CacheDoctors(doctors []model.Account) {
	c := getDirectoryCache()
	if c == nil {
		return
	}
	c.SetDefault(doctorListKey, doctors)
	for _, d := range doctors {
		if d.Email != "" {
			c.SetDefault(doctorKey(d.Email), d)
		}
	}
}

// CachedDoctor returns a single cached doctor by email.
func CachedDoctor(email string) (model.Account, bool) {
	c := getDirectoryCache()
	if c == nil {
		return model.Account{}, false
	}
	v, ok := c.Get(doctorKey(email))
	if !ok {
		return model.Account{}, false
	}
	d, ok := v.(model.Account)
	return d, ok
}

// CacheDoctor stores a single doctor lookup.
func CacheDoctor(d model.Account) {
	if c := getDirectoryCache(); c != nil && d.Email != "" {
		c.SetDefault(doctorKey(d.Email), d)
	}
}

// FlushDirectoryCache drops every cached directory entry.
func FlushDirectoryCache() {
	if c := getDirectoryCache(); c != nil {
		c.Flush()
	}
}
