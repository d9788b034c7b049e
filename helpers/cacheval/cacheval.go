// Package cacheval holds a value with validity timeout.
// "modified" timestamp is updated after value, without consistency.
// Usage scenario examples: SSID lookup, client count, geolocation.
// The panel loop is single-threaded; atomics keep concurrent readers
// (dev console, telemetry) safe anyway.
package cacheval

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/temoto/atomic_clock"
)

type Int32 struct {
	value    int32
	sentinel int32
	updated  *atomic_clock.Clock
	valid    time.Duration
}

// Not thread-safe. `valid` duration cannot be changed later.
// `sentinel` is stored in place of a value when a fetch fails.
func (c *Int32) Init(valid time.Duration, sentinel int32) {
	c.updated = atomic_clock.New()
	c.valid = valid
	c.sentinel = sentinel
	c.value = sentinel
}

func (c *Int32) get(now *atomic_clock.Clock) (int32, bool) {
	v := atomic.LoadInt32(&c.value)
	age := now.Sub(c.updated)
	return v, !c.updated.IsZero() && age >= 0 && age <= c.valid
}

// Returns current (possibly stale) value. Fast and cheap.
func (c *Int32) Get() int32 { return atomic.LoadInt32(&c.value) }

// Returns current value and true if it's fresh.
func (c *Int32) GetFresh() (int32, bool) { return c.get(atomic_clock.Now()) }

// Always returns fresh value, running `fetch` when stale.
// A failed fetch stores the sentinel: better visibly unknown than
// quietly serving an error as data.
func (c *Int32) GetOrUpdate(fetch func() (int32, error)) int32 {
	if v, ok := c.get(atomic_clock.Now()); ok {
		return v
	}
	v, err := fetch()
	if err != nil {
		v = c.sentinel
	}
	c.Set(v)
	return v
}

// Updates value and modified timestamp.
// Both are updated atomically, but not consistently with each other.
func (c *Int32) Set(new int32) {
	atomic.StoreInt32(&c.value, new)
	c.updated.SetNow()
}

// Marks the value stale so the next GetOrUpdate fetches.
// The old value stays readable through Get until then.
func (c *Int32) Invalidate() { c.updated.Set(0) }

type Float64 struct {
	mu       sync.Mutex
	value    float64
	sentinel float64
	updated  *atomic_clock.Clock
	valid    time.Duration
}

func (c *Float64) Init(valid time.Duration, sentinel float64) {
	c.updated = atomic_clock.New()
	c.valid = valid
	c.sentinel = sentinel
	c.value = sentinel
}

func (c *Float64) Get() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

func (c *Float64) GetFresh() (float64, bool) {
	now := atomic_clock.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value, c.fresh(now)
}

func (c *Float64) GetOrUpdate(fetch func() (float64, error)) float64 {
	now := atomic_clock.Now()
	c.mu.Lock()
	if c.fresh(now) {
		v := c.value
		c.mu.Unlock()
		return v
	}
	c.mu.Unlock()
	v, err := fetch()
	if err != nil {
		v = c.sentinel
	}
	c.Set(v)
	return v
}

func (c *Float64) Set(new float64) {
	c.mu.Lock()
	c.value = new
	c.mu.Unlock()
	c.updated.SetNow()
}

func (c *Float64) Invalidate() { c.updated.Set(0) }

func (c *Float64) fresh(now *atomic_clock.Clock) bool {
	age := now.Sub(c.updated)
	return !c.updated.IsZero() && age >= 0 && age <= c.valid
}

type String struct {
	mu       sync.Mutex
	value    string
	sentinel string
	updated  *atomic_clock.Clock
	valid    time.Duration
}

func (c *String) Init(valid time.Duration, sentinel string) {
	c.updated = atomic_clock.New()
	c.valid = valid
	c.sentinel = sentinel
	c.value = sentinel
}

func (c *String) Get() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

func (c *String) GetFresh() (string, bool) {
	now := atomic_clock.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value, c.fresh(now)
}

func (c *String) GetOrUpdate(fetch func() (string, error)) string {
	now := atomic_clock.Now()
	c.mu.Lock()
	if c.fresh(now) {
		v := c.value
		c.mu.Unlock()
		return v
	}
	c.mu.Unlock()
	v, err := fetch()
	if err != nil {
		v = c.sentinel
	}
	c.Set(v)
	return v
}

func (c *String) Set(new string) {
	c.mu.Lock()
	c.value = new
	c.mu.Unlock()
	c.updated.SetNow()
}

func (c *String) Invalidate() { c.updated.Set(0) }

func (c *String) fresh(now *atomic_clock.Clock) bool {
	age := now.Sub(c.updated)
	return !c.updated.IsZero() && age >= 0 && age <= c.valid
}
