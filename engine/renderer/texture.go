package renderer

import (
	"image"

	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/resources"
	"golang.org/x/image/draw"
)

// CreateTexture uploads img as a 2D texture. With generateMips the full mip chain down
// to 1x1 is built on the CPU and uploaded with it.
func (d *Driver) CreateTexture(name string, img image.Image, generateMips bool) (*resources.Texture, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, errors.Newf("texture %q has no pixels", name)
	}
	mips := []*image.RGBA{toRGBA(img)}
	if generateMips {
		mips = buildMipChain(mips[0])
	}

	bounds := mips[0].Bounds()
	tex := resources.NewTexture(0, name, d.id, d.backend)
	tex.Width = uint32(bounds.Dx())
	tex.Height = uint32(bounds.Dy())
	tex.MipLevels = uint32(len(mips))
	tex.ID = d.textures.Acquire(tex)
	if err := d.backend.TextureCreate(tex, mips); err != nil {
		d.releaseID(d.textures, tex.ID)
		return nil, errors.Wrapf(err, "creating texture %q", name)
	}
	tex.OnDestroy(func() {
		d.releaseID(d.textures, tex.ID)
	})
	core.LogDebug("texture %q created: %dx%d, %d mip level(s)", name, tex.Width, tex.Height, tex.MipLevels)
	return tex, nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// buildMipChain halves base until both sides reach 1.
func buildMipChain(base *image.RGBA) []*image.RGBA {
	chain := []*image.RGBA{base}
	w, h := base.Bounds().Dx(), base.Bounds().Dy()
	for w > 1 || h > 1 {
		w, h = max(w/2, 1), max(h/2, 1)
		prev := chain[len(chain)-1]
		level := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.ApproxBiLinear.Scale(level, level.Bounds(), prev, prev.Bounds(), draw.Src, nil)
		chain = append(chain, level)
	}
	return chain
}

// MipLevelCount returns the number of levels of a full chain for a width x height image.
func MipLevelCount(width, height uint32) uint32 {
	levels := uint32(1)
	for width > 1 || height > 1 {
		width, height = max(width/2, 1), max(height/2, 1)
		levels++
	}
	return levels
}
