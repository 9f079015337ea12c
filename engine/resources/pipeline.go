package resources

import "github.com/spaghettifunk/prism/engine/renderer/metadata"

/** @brief A graphics pipeline built by the application. Only its identity matters here. */
type Pipeline struct {
	ID   uint32
	Name string
	/** @brief Contains internal data for the renderer-API-specific pipeline. */
	InternalData interface{}
}

type DescriptorSetOps interface {
	DescriptorSetDestroy(set *DescriptorSet)
}

/** @brief Texture bindings shared by every draw of a batch. */
type DescriptorSet struct {
	RefCount
	ID     uint32
	Layers [metadata.MaxTextureLayers]TextureLayer

	InternalData interface{}
}

func NewDescriptorSet(id uint32, ops DescriptorSetOps) *DescriptorSet {
	s := &DescriptorSet{ID: id}
	for i := range s.Layers {
		s.Layers[i].Sampling = metadata.DefaultSamplingParams()
	}
	s.init()
	s.OnDestroy(func() {
		if ops != nil {
			ops.DescriptorSetDestroy(s)
		}
		for i := range s.Layers {
			if s.Layers[i].Texture != nil {
				s.Layers[i].Texture.Release()
				s.Layers[i].Texture = nil
			}
		}
	})
	return s
}

// SetLayer binds texture to layer i, acquiring it and releasing whatever was there.
func (s *DescriptorSet) SetLayer(i int, texture *Texture, sampling metadata.TextureSamplingParams) {
	if i < 0 || i >= len(s.Layers) {
		return
	}
	if texture != nil {
		texture.Acquire()
	}
	if old := s.Layers[i].Texture; old != nil {
		old.Release()
	}
	s.Layers[i] = TextureLayer{Texture: texture, Sampling: sampling}
}

func (s *DescriptorSet) Release() {
	s.drop()
}
