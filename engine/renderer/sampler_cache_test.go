package renderer

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/spaghettifunk/prism/engine/assets"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/spaghettifunk/prism/engine/resources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSamplerCacheDeduplicates(t *testing.T) {
	d, backend := newTestDriver(t)
	params := metadata.DefaultSamplingParams()

	h1, hash1, err := d.Samplers().Acquire(params, nil)
	require.NoError(t, err)
	h2, hash2, err := d.Samplers().Acquire(params, nil)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Equal(t, hash1, hash2)
	assert.Equal(t, 1, backend.SamplersCreated)

	biased := params
	biased.LODBias = -0.5
	h3, hash3, err := d.Samplers().Acquire(biased, nil)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
	assert.NotEqual(t, hash1, hash3)
	assert.Equal(t, 2, d.Samplers().Len())
	assert.Equal(t, float32(-0.5), backend.Samplers[h3].LODBias)

	got, ok := d.Samplers().Lookup(hash3)
	assert.True(t, ok)
	assert.Equal(t, h3, got)
	_, ok = d.Samplers().Lookup(metadata.NoSamplerHash)
	assert.False(t, ok)
}

func TestSamplerCacheSharesSignedZeroBias(t *testing.T) {
	d, backend := newTestDriver(t)
	params := metadata.DefaultSamplingParams()
	negative := params
	negative.LODBias = float32(math.Copysign(0, -1))

	h1, hash1, err := d.Samplers().Acquire(params, nil)
	require.NoError(t, err)
	h2, hash2, err := d.Samplers().Acquire(negative, nil)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Equal(t, hash1, hash2)
	assert.Equal(t, 1, backend.SamplersCreated)
	assert.Equal(t, 1, d.Samplers().Len())
}

func TestSamplerCacheDropsMipFilterForSingleLevelTextures(t *testing.T) {
	d, backend := newTestDriver(t)
	tex := resources.NewTexture(1, "flat", d.ID(), backend)
	defer tex.Release()

	handle, _, err := d.Samplers().Acquire(metadata.DefaultSamplingParams(), tex)
	require.NoError(t, err)
	assert.Equal(t, metadata.MinFilterLinearNoMip, backend.Samplers[handle].MinFilter)

	tex.MipLevels = 4
	handle, _, err = d.Samplers().Acquire(metadata.DefaultSamplingParams(), tex)
	require.NoError(t, err)
	assert.Equal(t, metadata.MinFilterLinearLinearMip, backend.Samplers[handle].MinFilter)
}

func TestSetActiveTextureSkipsRedundantBinds(t *testing.T) {
	d, backend := newTestDriver(t)
	tex, err := d.CreateTexture("checker", assets.Checkerboard(8, 2), true)
	require.NoError(t, err)
	defer tex.Release()
	params := metadata.DefaultSamplingParams()

	require.True(t, d.SetActiveTexture(1, tex, params))
	require.True(t, d.SetActiveTexture(1, tex, params))
	assert.Len(t, backend.CallsOf("texture_bind"), 1)
	assert.Len(t, backend.CallsOf("sampler_bind"), 1)
	assert.Equal(t, int32(2), tex.References())

	bound, hash := d.ActiveTexture(1)
	assert.Same(t, tex, bound)
	assert.Equal(t, params.Hash(tex.MipLevels), hash)

	// a new sampler state rebinds only the sampler
	params.WrapU = metadata.WrapClampToEdge
	d.SetActiveTexture(1, tex, params)
	assert.Len(t, backend.CallsOf("texture_bind"), 1)
	assert.Len(t, backend.CallsOf("sampler_bind"), 2)

	d.SetActiveTexture(1, nil, params)
	calls := backend.CallsOf("sampler_bind")
	assert.Equal(t, uint64(0), calls[len(calls)-1].Handle)
	assert.Equal(t, int32(1), tex.References())
	_, hash = d.ActiveTexture(1)
	assert.Equal(t, metadata.NoSamplerHash, hash)
}

func TestSetActiveTextureRefusesForeignTextures(t *testing.T) {
	d, backend := newTestDriver(t)
	own, err := d.CreateTexture("own", assets.Checkerboard(4, 1), false)
	require.NoError(t, err)
	defer own.Release()
	foreign := resources.NewTexture(77, "foreign", uuid.New(), backend)
	defer foreign.Release()

	d.SetActiveTexture(0, own, metadata.DefaultSamplingParams())
	assert.True(t, d.SetActiveTexture(0, foreign, metadata.DefaultSamplingParams()))

	bound, _ := d.ActiveTexture(0)
	assert.Nil(t, bound)
	calls := backend.CallsOf("texture_bind")
	require.Len(t, calls, 2)
	assert.Equal(t, uint32(0), calls[1].ID)
	assert.Equal(t, int32(1), foreign.References())
}

func TestRemoveTextureClearsEveryStage(t *testing.T) {
	d, _ := newTestDriver(t)
	tex, err := d.CreateTexture("checker", assets.Checkerboard(4, 1), false)
	require.NoError(t, err)
	defer tex.Release()

	for stage := uint32(0); stage < 3; stage++ {
		d.SetActiveTexture(stage, tex, metadata.DefaultSamplingParams())
	}
	assert.Equal(t, int32(4), tex.References())

	d.RemoveTexture(tex)
	assert.Equal(t, int32(1), tex.References())
	for stage := uint32(0); stage < 3; stage++ {
		bound, _ := d.ActiveTexture(stage)
		assert.Nil(t, bound)
	}
}

func TestBindDescriptorSet(t *testing.T) {
	d, _ := newTestDriver(t)
	tex, err := d.CreateTexture("checker", assets.Checkerboard(4, 1), false)
	require.NoError(t, err)
	defer tex.Release()

	set := d.CreateDescriptorSet()
	set.SetLayer(1, tex, metadata.DefaultSamplingParams())
	d.BindDescriptorSet(set)
	bound, _ := d.ActiveTexture(1)
	assert.Same(t, tex, bound)

	d.BindDescriptorSet(nil)
	bound, _ = d.ActiveTexture(1)
	assert.Nil(t, bound)
	set.Release()
	assert.Equal(t, 0, d.sets.Live())
	assert.Equal(t, int32(1), tex.References())
}

func TestMipLevelCount(t *testing.T) {
	assert.Equal(t, uint32(1), MipLevelCount(1, 1))
	assert.Equal(t, uint32(4), MipLevelCount(8, 8))
	assert.Equal(t, uint32(9), MipLevelCount(256, 3))

	d, backend := newTestDriver(t)
	tex, err := d.CreateTexture("checker", assets.Checkerboard(8, 2), true)
	require.NoError(t, err)
	defer tex.Release()
	assert.Equal(t, uint32(4), tex.MipLevels)
	mips := backend.Textures[tex.ID]
	require.Len(t, mips, 4)
	assert.Equal(t, 1, mips[3].Bounds().Dx())
}
