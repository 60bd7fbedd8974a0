package platform

import (
	"sync"

	"github.com/emirpasic/gods/maps/hashmap"
)

// MaxFontDirSize is the largest table directory a FontDirCache stores.
const MaxFontDirSize = 1023

// FontDirCache remembers font table directories by font name.
// It is safe for concurrent use.
type FontDirCache struct {
	sync.Mutex
	dirs *hashmap.Map // name → []byte
}

// NewFontDirCache creates an empty cache.
func NewFontDirCache() *FontDirCache {
	return &FontDirCache{dirs: hashmap.New()}
}

// Set stores a copy of a font's table directory. Empty directories and
// directories larger than MaxFontDirSize are not stored. Set returns
// whether dir has been stored.
func (c *FontDirCache) Set(name string, dir []byte) bool {
	if len(dir) < 1 || len(dir) > MaxFontDirSize {
		return false
	}
	c.Lock()
	defer c.Unlock()
	c.dirs.Put(name, append([]byte(nil), dir...))
	return true
}

// Dir returns the table directory stored for a font, or nil.
func (c *FontDirCache) Dir(name string) []byte {
	c.Lock()
	defer c.Unlock()
	if d, found := c.dirs.Get(name); found {
		return d.([]byte)
	}
	return nil
}

// Size returns the size of the table directory stored for a font, or 0.
func (c *FontDirCache) Size(name string) int {
	return len(c.Dir(name))
}

// Len returns the number of stored directories.
func (c *FontDirCache) Len() int {
	c.Lock()
	defer c.Unlock()
	return c.dirs.Size()
}
