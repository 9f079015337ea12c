package opengl

import (
	"image"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/gl/v4.5-core/gl"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/spaghettifunk/prism/engine/resources"
)

func (r *OpenGLRenderer) TextureCreate(texture *resources.Texture, mips []*image.RGBA) error {
	if texture.Type != metadata.TextureType2d {
		return errors.Newf("texture %q: only 2D textures can be uploaded", texture.Name)
	}
	if len(mips) == 0 {
		return errors.Newf("texture %q has no image data", texture.Name)
	}

	var handle uint32
	gl.CreateTextures(gl.TEXTURE_2D, 1, &handle)
	gl.TextureStorage2D(handle, int32(len(mips)), gl.RGBA8, int32(texture.Width), int32(texture.Height))
	for level, img := range mips {
		b := img.Bounds()
		gl.TextureSubImage2D(handle, int32(level), 0, 0, int32(b.Dx()), int32(b.Dy()), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	}
	gl.TextureParameteri(handle, gl.TEXTURE_MAX_LEVEL, int32(len(mips)-1))
	if code := gl.GetError(); code != gl.NO_ERROR {
		gl.DeleteTextures(1, &handle)
		return errors.Newf("uploading texture %q failed with 0x%x", texture.Name, code)
	}
	texture.InternalData = handle
	return nil
}

func (r *OpenGLRenderer) TextureDestroy(texture *resources.Texture) {
	handle, ok := texture.InternalData.(uint32)
	if !ok {
		return
	}
	gl.DeleteTextures(1, &handle)
	texture.InternalData = nil
}

func (r *OpenGLRenderer) TextureBind(stage uint32, texture *resources.Texture) {
	var handle uint32
	if texture != nil {
		handle, _ = texture.InternalData.(uint32)
	}
	gl.BindTextureUnit(stage, handle)
}
