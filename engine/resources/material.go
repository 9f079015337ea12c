package resources

import "github.com/spaghettifunk/prism/engine/renderer/metadata"

/** @brief A texture together with the sampling state it is read with. */
type TextureLayer struct {
	Texture  *Texture
	Sampling metadata.TextureSamplingParams
}

/**
 * @brief Material record carried by a mesh buffer. Texture references are plain
 * pointers; holders acquire them through Retain.
 */
type Material struct {
	Type      metadata.MaterialType
	Thickness float32
	Layers    [metadata.MaxTextureLayers]TextureLayer
}

func DefaultMaterial() Material {
	m := Material{Type: metadata.MaterialTypeSolid, Thickness: 1}
	for i := range m.Layers {
		m.Layers[i].Sampling = metadata.DefaultSamplingParams()
	}
	return m
}

// Retain acquires every referenced texture.
func (m Material) Retain() {
	for _, l := range m.Layers {
		if l.Texture != nil {
			l.Texture.Acquire()
		}
	}
}

// Drop releases every referenced texture.
func (m Material) Drop() {
	for _, l := range m.Layers {
		if l.Texture != nil {
			l.Texture.Release()
		}
	}
}

// TextureCount returns how many leading layers have a texture.
func (m Material) TextureCount() int {
	n := 0
	for _, l := range m.Layers {
		if l.Texture == nil {
			break
		}
		n++
	}
	return n
}
