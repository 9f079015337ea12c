package resources

import (
	"github.com/google/uuid"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

type TextureOps interface {
	TextureDestroy(texture *Texture)
}

/** @brief A GPU texture. Owner identifies the driver that created it. */
type Texture struct {
	RefCount
	ID uint32
	/** @brief The texture name, used for lookups. */
	Name   string
	Type   metadata.TextureType
	Width  uint32
	Height uint32
	/** @brief Number of mip levels, at least 1. */
	MipLevels uint32
	/** @brief Identity of the owning driver. */
	Owner uuid.UUID
	/** @brief The raw texture data (pixels) handle of the backend. */
	InternalData interface{}
}

func NewTexture(id uint32, name string, owner uuid.UUID, ops TextureOps) *Texture {
	t := &Texture{
		ID:        id,
		Name:      name,
		Type:      metadata.TextureType2d,
		MipLevels: 1,
		Owner:     owner,
	}
	t.init()
	t.OnDestroy(func() {
		ops.TextureDestroy(t)
		t.InternalData = nil
	})
	return t
}

func (t *Texture) Release() {
	t.drop()
}
