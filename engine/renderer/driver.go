package renderer

import (
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/spaghettifunk/prism/engine/resources"
)

// MaterialLookup resolves the renderer capabilities registered for a material type.
type MaterialLookup func(metadata.MaterialType) (metadata.RendererCapabilities, bool)

/** @brief Per-frame and lifetime draw counters. */
type DrawStats struct {
	DrawCalls       uint32
	IndirectDraws   uint32
	Primitives      uint32
	TotalDrawCalls  uint64
	TotalPrimitives uint64
}

// Driver owns every GPU object created through it and issues draws on the backend.
// It is not safe for concurrent use; all calls belong on the rendering thread.
type Driver struct {
	id      uuid.UUID
	backend RendererBackend
	config  core.DriverConfig
	caps    metadata.BackendCapabilities

	buffers  *core.IdentifierPool
	formats  *core.IdentifierPool
	textures *core.IdentifierPool
	queries  *core.IdentifierPool
	sets     *core.IdentifierPool

	samplers *SamplerCache
	stages   *textureStageCache

	currentFormat   *resources.VertexFormat
	currentPipeline *resources.Pipeline
	conditional     *resources.OcclusionQuery
	activeQuery     *resources.OcclusionQuery

	materials MaterialLookup
	stats     DrawStats
	closed    bool
}

// New initializes backend and wraps it in a driver. Any failure, including a device
// that lacks a required feature, shuts the backend down again and returns an
// ErrDriverInit error.
func New(backend RendererBackend, appName string, width, height uint32, config core.DriverConfig) (*Driver, error) {
	if backend == nil {
		return nil, errors.Wrap(core.ErrDriverInit, "no backend")
	}
	if err := backend.Initialize(appName, width, height); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "initializing %s backend", backend.Type()), core.ErrDriverInit)
	}

	caps := backend.Capabilities()
	if err := checkCapabilities(caps); err != nil {
		if serr := backend.Shutdown(); serr != nil {
			core.LogError(serr.Error())
		}
		return nil, err
	}

	if config.MaxTextureUnits == 0 || config.MaxTextureUnits > caps.MaxTextureUnits {
		config.MaxTextureUnits = caps.MaxTextureUnits
	}
	if config.MaxAnisotropy == 0 || config.MaxAnisotropy > caps.MaxAnisotropy {
		config.MaxAnisotropy = caps.MaxAnisotropy
	}

	d := &Driver{
		id:       uuid.New(),
		backend:  backend,
		config:   config,
		caps:     caps,
		buffers:  core.NewIdentifierPool(256),
		formats:  core.NewIdentifierPool(64),
		textures: core.NewIdentifierPool(64),
		queries:  core.NewIdentifierPool(16),
		sets:     core.NewIdentifierPool(16),
	}
	d.samplers = NewSamplerCache(backend, config.MaxAnisotropy)
	d.stages = newTextureStageCache(config.MaxTextureUnits)

	core.LogInfo("%s driver %s initialized: %d texture units, anisotropy %d", backend.Type(), d.id, config.MaxTextureUnits, config.MaxAnisotropy)
	return d, nil
}

func checkCapabilities(caps metadata.BackendCapabilities) error {
	if caps.MaxVertexAttribBindings < metadata.VertexAttributeCount {
		return errors.Wrapf(core.ErrDriverInit, "device exposes %d vertex attribute bindings, %d required", caps.MaxVertexAttribBindings, metadata.VertexAttributeCount)
	}
	if !caps.MultiDrawIndirect {
		return errors.Wrap(core.ErrDriverInit, "device lacks multi draw indirect")
	}
	if caps.MaxTextureUnits == 0 {
		return errors.Wrap(core.ErrDriverInit, "device exposes no texture units")
	}
	return nil
}

// ID identifies the driver. Textures remember it as their owner.
func (d *Driver) ID() uuid.UUID {
	return d.id
}

func (d *Driver) Backend() RendererBackend {
	return d.backend
}

func (d *Driver) Capabilities() metadata.BackendCapabilities {
	return d.caps
}

func (d *Driver) Config() core.DriverConfig {
	return d.config
}

func (d *Driver) Samplers() *SamplerCache {
	return d.samplers
}

// SetMaterialLookup installs the function used to resolve material renderer capabilities.
func (d *Driver) SetMaterialLookup(lookup MaterialLookup) {
	d.materials = lookup
}

func (d *Driver) Stats() DrawStats {
	return d.stats
}

/** @brief Number of GPU objects of each kind created through a driver and not yet destroyed. */
type LiveObjects struct {
	Buffers          int
	VertexFormats    int
	Textures         int
	OcclusionQueries int
	DescriptorSets   int
}

func (d *Driver) Live() LiveObjects {
	return LiveObjects{
		Buffers:          d.buffers.Live(),
		VertexFormats:    d.formats.Live(),
		Textures:         d.textures.Live(),
		OcclusionQueries: d.queries.Live(),
		DescriptorSets:   d.sets.Live(),
	}
}

func (d *Driver) BeginFrame(deltaTime float64) error {
	d.stats.DrawCalls = 0
	d.stats.IndirectDraws = 0
	d.stats.Primitives = 0
	return d.backend.BeginFrame(deltaTime)
}

func (d *Driver) EndFrame(deltaTime float64) error {
	return d.backend.EndFrame(deltaTime)
}

func (d *Driver) OnResize(width, height uint32) error {
	return d.backend.Resized(width, height)
}

// Shutdown unbinds everything, destroys the sampler cache and shuts the backend down.
// Objects still alive at this point are reported as leaks. Later calls do nothing.
func (d *Driver) Shutdown() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.stages.clear(d)
	if d.currentFormat != nil {
		d.bindVertexFormat(nil)
	}
	if d.conditional != nil {
		d.endConditionalRender()
	}
	d.samplers.Destroy()

	d.reportLeaks("buffer", d.buffers)
	d.reportLeaks("vertex format", d.formats)
	d.reportLeaks("texture", d.textures)
	d.reportLeaks("occlusion query", d.queries)
	d.reportLeaks("descriptor set", d.sets)

	return d.backend.Shutdown()
}

func (d *Driver) reportLeaks(kind string, pool *core.IdentifierPool) {
	if pool.Live() == 0 {
		return
	}
	core.LogWarn("%d %s object(s) still alive at driver shutdown", pool.Live(), kind)
	pool.Each(func(id uint32, owner interface{}) {
		core.LogDebug("leaked %s %d", kind, id)
	})
}

func (d *Driver) releaseID(pool *core.IdentifierPool, id uint32) {
	if err := pool.Release(id); err != nil {
		core.LogError(err.Error())
	}
}
