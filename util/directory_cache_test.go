package util

import (
	"testing"
	"time"

	"github.com/otscheduler/portal/model"
	"github.com/stretchr/testify/assert"
)

func TestDirectoryCache_Disabled(t *testing.T) {
	InitDirectoryCache(0)
	CacheDoctors([]model.Account{{Email: "a@example.com"}})
	_, ok := CachedDoctors()
	assert.False(t, ok)
	_, ok = CachedDoctor("a@example.com")
	assert.False(t, ok)
}

func TestDirectoryCache_ListAndLookup(t *testing.T) {
	InitDirectoryCache(time.Minute)
	defer InitDirectoryCache(0)

	doctors := []model.Account{
		{ID: "1", Username: "Dr. Rao", Email: "Rao@Example.com", Department: "ortho"},
		{ID: "2", Username: "Dr. Sen", Email: "sen@example.com"},
	}
	CacheDoctors(doctors)

	got, ok := CachedDoctors()
	assert.True(t, ok)
	assert.Equal(t, doctors, got)

	d, ok := CachedDoctor("rao@example.com")
	assert.True(t, ok)
	assert.Equal(t, "Orthopedics", d.DirectoryName())

	FlushDirectoryCache()
	_, ok = CachedDoctors()
	assert.False(t, ok)
}

func TestDirectoryCache_Expires(t *testing.T) {
	InitDirectoryCache(20 * time.Millisecond)
	defer InitDirectoryCache(0)

	CacheDoctor(model.Account{Email: "x@example.com"})
	time.Sleep(40 * time.Millisecond)
	_, ok := CachedDoctor("x@example.com")
	assert.False(t, ok)
}
