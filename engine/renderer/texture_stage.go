package renderer

import (
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/spaghettifunk/prism/engine/resources"
)

// textureStageCache remembers what is bound to every texture stage so that redundant
// texture and sampler binds are skipped. It holds a reference to every bound texture.
type textureStageCache struct {
	textures      []*resources.Texture
	samplerHashes []uint64
}

func newTextureStageCache(units uint32) *textureStageCache {
	c := &textureStageCache{
		textures:      make([]*resources.Texture, units),
		samplerHashes: make([]uint64, units),
	}
	for i := range c.samplerHashes {
		c.samplerHashes[i] = metadata.NoSamplerHash
	}
	return c
}

func (c *textureStageCache) set(stage uint32, texture *resources.Texture) {
	if texture != nil {
		texture.Acquire()
	}
	old := c.textures[stage]
	c.textures[stage] = texture
	if old != nil {
		old.Release()
	}
}

// remove unbinds texture from every stage it is bound to.
func (c *textureStageCache) remove(d *Driver, texture *resources.Texture) {
	for i := len(c.textures) - 1; i >= 0; i-- {
		if c.textures[i] != texture {
			continue
		}
		stage := uint32(i)
		d.backend.TextureBind(stage, nil)
		d.backend.SamplerBind(stage, 0)
		c.samplerHashes[i] = metadata.NoSamplerHash
		c.textures[i] = nil
		texture.Release()
	}
}

func (c *textureStageCache) clear(d *Driver) {
	for _, t := range c.textures {
		if t != nil {
			c.remove(d, t)
		}
	}
}

// SetActiveTexture binds texture to stage and picks the sampler for params. A nil texture
// unbinds the stage. A texture created by another driver is refused: the stage is cleared,
// the error logged, and drawing continues without it. It returns false only for a stage
// outside the configured texture units.
func (d *Driver) SetActiveTexture(stage uint32, texture *resources.Texture, params metadata.TextureSamplingParams) bool {
	c := d.stages
	if stage >= uint32(len(c.textures)) {
		return false
	}

	if c.textures[stage] != texture {
		old := c.textures[stage]
		switch {
		case texture == nil:
			c.set(stage, nil)
			if old != nil {
				d.backend.TextureBind(stage, nil)
			}
		case texture.Owner != d.id:
			c.set(stage, nil)
			if old != nil {
				d.backend.TextureBind(stage, nil)
			}
			core.LogError("tried to set texture %q not owned by this driver on stage %d", texture.Name, stage)
		default:
			c.set(stage, texture)
			d.backend.TextureBind(stage, texture)
		}
	}

	if current := c.textures[stage]; current != nil {
		hash := params.Hash(current.MipLevels)
		if c.samplerHashes[stage] != hash {
			handle, err := d.samplers.acquireHash(hash)
			if err != nil {
				core.LogError(err.Error())
				return true
			}
			c.samplerHashes[stage] = hash
			d.backend.SamplerBind(stage, handle)
		}
	} else if c.samplerHashes[stage] != metadata.NoSamplerHash {
		c.samplerHashes[stage] = metadata.NoSamplerHash
		d.backend.SamplerBind(stage, 0)
	}
	return true
}

// ActiveTexture returns what is bound to stage and the packed sampler parameters in use.
func (d *Driver) ActiveTexture(stage uint32) (*resources.Texture, uint64) {
	if stage >= uint32(len(d.stages.textures)) {
		return nil, metadata.NoSamplerHash
	}
	return d.stages.textures[stage], d.stages.samplerHashes[stage]
}

// RemoveTexture unbinds texture from every stage that holds it.
func (d *Driver) RemoveTexture(texture *resources.Texture) {
	if texture == nil {
		return
	}
	d.stages.remove(d, texture)
}

// ClearTextureStages unbinds every stage.
func (d *Driver) ClearTextureStages() {
	d.stages.clear(d)
}
