package canvas

import (
	"errors"
	"fmt"
	"math"

	"github.com/hashicorp/golang-lru/simplelru"
)

// cacheEntry records where a texture lives, the rebuild that packed it and
// the last rebuild that used it.
type cacheEntry struct {
	tex    *Texture
	region Region
	added  uint64
	frame  uint64
}

// AtlasCache maps textures to their packed regions. One texture maps to
// exactly one region at a time. Entries are kept in least-recently-used
// order so that a capped atlas can evict textures the current frame does not
// need before reporting exhaustion.
type AtlasCache struct {
	packer    *Packer
	lru       *simplelru.LRU
	frame     uint64
	published uint64
	evictions int
	// frontLost is set when a texture the published frame drew was evicted
	// or released after it was published.
	frontLost bool
}

// NewAtlasCache creates an empty cache over p.
func NewAtlasCache(p *Packer) *AtlasCache {
	c := &AtlasCache{packer: p}
	lru, err := simplelru.NewLRU(math.MaxInt32, c.onEvict)
	if err != nil {
		// NewLRU only fails for non-positive sizes.
		panic(err)
	}
	c.lru = lru
	return c
}

// onEvict returns the evicted texture's space to the packer. It runs for
// every removal path of the LRU, so the cache and the packer never disagree.
func (c *AtlasCache) onEvict(_ interface{}, value interface{}) {
	e := value.(*cacheEntry)
	if c.published > 0 && e.added <= c.published && e.frame >= c.published {
		c.frontLost = true
	}
	if err := c.packer.Release(e.region); err != nil {
		Logger().Warn("atlas release failed", "texture", e.tex.ID(), "err", err)
	}
}

// Packer returns the underlying packer.
func (c *AtlasCache) Packer() *Packer { return c.packer }

// Len returns the number of cached textures.
func (c *AtlasCache) Len() int { return c.lru.Len() }

// Evictions returns how many textures were evicted to make room so far.
func (c *AtlasCache) Evictions() int { return c.evictions }

// BeginFrame starts a new rebuild. Textures touched after this call are
// pinned until the next BeginFrame.
func (c *AtlasCache) BeginFrame() { c.frame++ }

// MarkPublished records that the current frame's regions are now on screen.
func (c *AtlasCache) MarkPublished() {
	c.published = c.frame
	c.frontLost = false
}

// FrontLost reports whether a region drawn by the last published frame has
// been freed since, so the published buffers may sample foreign pixels.
func (c *AtlasCache) FrontLost() bool { return c.frontLost }

// Lookup returns the region of a cached texture without touching its LRU
// position.
func (c *AtlasCache) Lookup(tex *Texture) (Region, bool) {
	v, ok := c.lru.Peek(tex.ID())
	if !ok {
		return Region{}, false
	}
	return v.(*cacheEntry).region, true
}

// Insert returns the region holding tex, packing it first if needed. fresh
// reports whether the region is new, in which case the caller must upload
// the texture's pixels.
func (c *AtlasCache) Insert(tex *Texture) (region Region, fresh bool, err error) {
	if v, ok := c.lru.Get(tex.ID()); ok {
		e := v.(*cacheEntry)
		e.frame = c.frame
		return e.region, false, nil
	}

	region, err = c.packer.Allocate(tex.Width(), tex.Height())
	for errors.Is(err, ErrAtlasExhausted) {
		if !c.evictOldest() {
			return Region{}, false, fmt.Errorf("texture %d (%dx%d): %w", tex.ID(), tex.Width(), tex.Height(), err)
		}
		region, err = c.packer.Allocate(tex.Width(), tex.Height())
	}
	if err != nil {
		return Region{}, false, err
	}
	c.lru.Add(tex.ID(), &cacheEntry{tex: tex, region: region, added: c.frame, frame: c.frame})
	return region, true, nil
}

// evictOldest drops the least recently used texture unless the current
// frame still needs it. Entries are stamped in LRU order, so textures the
// published frame no longer shows go before the ones it still draws. It
// reports whether anything was evicted.
func (c *AtlasCache) evictOldest() bool {
	_, v, ok := c.lru.GetOldest()
	if !ok {
		return false
	}
	e := v.(*cacheEntry)
	if e.frame == c.frame {
		return false
	}
	c.lru.RemoveOldest()
	c.evictions++
	Logger().Warn("atlas texture evicted", "texture", e.tex.ID(), "region", e.region.String())
	return true
}

// Release drops tex from the cache and frees its region. It reports whether
// the texture was cached.
func (c *AtlasCache) Release(tex *Texture) bool {
	return c.lru.Remove(tex.ID())
}

// Purge drops every cached texture.
func (c *AtlasCache) Purge() {
	c.lru.Purge()
}
