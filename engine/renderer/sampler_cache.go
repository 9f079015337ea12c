package renderer

import (
	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/spaghettifunk/prism/engine/resources"
)

type samplerBackend interface {
	SamplerCreate(params metadata.TextureSamplingParams, anisotropy uint8) (metadata.SamplerHandle, error)
	SamplerDestroy(handle metadata.SamplerHandle)
}

type samplerEntry struct {
	handle metadata.SamplerHandle
	params metadata.TextureSamplingParams
}

// SamplerCache deduplicates sampler objects by their packed sampling parameters.
// Entries live until Destroy; there is no eviction.
type SamplerCache struct {
	backend       samplerBackend
	maxAnisotropy uint8
	entries       map[uint64]samplerEntry
	created       int
}

func NewSamplerCache(backend samplerBackend, maxAnisotropy uint8) *SamplerCache {
	return &SamplerCache{
		backend:       backend,
		maxAnisotropy: maxAnisotropy,
		entries:       make(map[uint64]samplerEntry),
	}
}

// mipLevelsOf treats a missing texture as having a full mip chain.
func mipLevelsOf(texture *resources.Texture) uint32 {
	if texture == nil {
		return ^uint32(0)
	}
	return texture.MipLevels
}

// Acquire returns the sampler for params as applied to texture, creating it on first use.
func (c *SamplerCache) Acquire(params metadata.TextureSamplingParams, texture *resources.Texture) (metadata.SamplerHandle, uint64, error) {
	hash := params.Hash(mipLevelsOf(texture))
	handle, err := c.acquireHash(hash)
	return handle, hash, err
}

func (c *SamplerCache) acquireHash(hash uint64) (metadata.SamplerHandle, error) {
	if e, ok := c.entries[hash]; ok {
		return e.handle, nil
	}
	params := metadata.DecodeSamplingParams(hash)
	handle, err := c.backend.SamplerCreate(params, params.AnisotropyLevel(c.maxAnisotropy))
	if err != nil {
		return 0, errors.Wrapf(err, "creating sampler %#x", hash)
	}
	c.entries[hash] = samplerEntry{handle: handle, params: params}
	c.created++
	return handle, nil
}

// Lookup returns the cached sampler for hash without creating one.
func (c *SamplerCache) Lookup(hash uint64) (metadata.SamplerHandle, bool) {
	e, ok := c.entries[hash]
	return e.handle, ok
}

func (c *SamplerCache) Len() int {
	return len(c.entries)
}

// Created returns how many sampler objects were ever created.
func (c *SamplerCache) Created() int {
	return c.created
}

// Each visits every entry. Order is unspecified.
func (c *SamplerCache) Each(fn func(hash uint64, handle metadata.SamplerHandle, params metadata.TextureSamplingParams)) {
	for h, e := range c.entries {
		fn(h, e.handle, e.params)
	}
}

// Destroy deletes every sampler object.
func (c *SamplerCache) Destroy() {
	for h, e := range c.entries {
		c.backend.SamplerDestroy(e.handle)
		delete(c.entries, h)
	}
}
