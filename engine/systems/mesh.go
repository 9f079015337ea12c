package systems

import (
	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/prism/engine/assets"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/resources"
)

type MeshSystemConfig struct {
	/** @brief The maximum number of meshes that can be loaded at once. */
	MaxMeshCount uint32
	/** @brief How CPU meshes are laid out in GPU buffers. */
	Packing renderer.PackingPolicy
}

type meshReference struct {
	mesh           *resources.Mesh
	report         *renderer.ConversionReport
	referenceCount uint32
	autoRelease    bool
}

// MeshSystem converts CPU meshes to GPU meshes under the configured packing policy
// and hands them out by name.
type MeshSystem struct {
	config *MeshSystemConfig
	meshes map[string]*meshReference
	// sub systems
	driver       *renderer.Driver
	assetManager *assets.AssetManager
	jobSystem    *JobSystem
}

func NewMeshSystem(config *MeshSystemConfig, driver *renderer.Driver, am *assets.AssetManager, js *JobSystem) (*MeshSystem, error) {
	if config.MaxMeshCount == 0 {
		err := errors.Wrap(core.ErrInvalidConfig, "func NewMeshSystem - config.MaxMeshCount must be > 0")
		core.LogError(err.Error())
		return nil, err
	}
	if driver == nil {
		return nil, errors.New("func NewMeshSystem - driver must not be nil")
	}
	return &MeshSystem{
		config:       config,
		meshes:       make(map[string]*meshReference),
		driver:       driver,
		assetManager: am,
		jobSystem:    js,
	}, nil
}

func (ms *MeshSystem) Packing() renderer.PackingPolicy {
	return ms.config.Packing
}

/**
 * @brief Registers cpu under name and acquires it. If name is already loaded its
 * reference count is incremented and cpu is ignored.
 */
func (ms *MeshSystem) AcquireFromCPU(name string, cpu *assets.CPUMesh, autoRelease bool) (*resources.Mesh, error) {
	if ref, ok := ms.meshes[name]; ok {
		ref.referenceCount++
		return ref.mesh, nil
	}
	return ms.convert(name, cpu, autoRelease)
}

// Acquire returns the named mesh, loading its descriptor through the asset manager on first use.
func (ms *MeshSystem) Acquire(name string, autoRelease bool) (*resources.Mesh, error) {
	if ref, ok := ms.meshes[name]; ok {
		ref.referenceCount++
		return ref.mesh, nil
	}
	if ms.assetManager == nil {
		return nil, errors.Wrapf(core.ErrNotFound, "mesh %q: no asset manager", name)
	}
	cpu, err := ms.assetManager.LoadMesh(name)
	if err != nil {
		return nil, err
	}
	return ms.convert(name, cpu, autoRelease)
}

// AcquireAsync generates the named CPU mesh on the job system and converts it on the
// next JobSystem.Update.
func (ms *MeshSystem) AcquireAsync(name string, autoRelease bool, onLoaded func(*resources.Mesh, error)) error {
	if ref, ok := ms.meshes[name]; ok {
		ref.referenceCount++
		onLoaded(ref.mesh, nil)
		return nil
	}
	if ms.assetManager == nil || ms.jobSystem == nil {
		return errors.Newf("mesh %q: asynchronous loading needs an asset manager and a job system", name)
	}
	am := ms.assetManager
	return ms.jobSystem.Submit(JobTask{
		Name: "mesh:" + name,
		Run: func() (interface{}, error) {
			return am.LoadMesh(name)
		},
		OnComplete: func(result interface{}) {
			onLoaded(ms.AcquireFromCPU(name, result.(*assets.CPUMesh), autoRelease))
		},
		OnFailure: func(err error) {
			onLoaded(nil, err)
		},
	})
}

func (ms *MeshSystem) convert(name string, cpu *assets.CPUMesh, autoRelease bool) (*resources.Mesh, error) {
	if uint32(len(ms.meshes)) >= ms.config.MaxMeshCount {
		err := errors.Newf("mesh system cannot hold more than %d meshes. Adjust configuration to allow more", ms.config.MaxMeshCount)
		core.LogError(err.Error())
		return nil, err
	}
	mesh, report, err := ms.driver.CreateGPUMeshFromCPU(cpu, ms.config.Packing)
	if err != nil {
		return nil, errors.Wrapf(err, "converting mesh %q", name)
	}
	if mesh.MeshBufferCount() == 0 {
		mesh.Release()
		return nil, errors.Wrapf(core.ErrEmptyMeshBuffer, "mesh %q: all %d mesh buffers skipped", name, len(report.Skipped))
	}
	mesh.Name = name
	ms.meshes[name] = &meshReference{
		mesh:           mesh,
		report:         report,
		referenceCount: 1,
		autoRelease:    autoRelease,
	}
	core.LogDebug("mesh '%s' loaded with %s: %d mesh buffer(s), %d skipped", name, ms.config.Packing, report.Converted, len(report.Skipped))
	return mesh, nil
}

// Report returns the conversion report of a loaded mesh.
func (ms *MeshSystem) Report(name string) (*renderer.ConversionReport, bool) {
	ref, ok := ms.meshes[name]
	if !ok {
		return nil, false
	}
	return ref.report, true
}

func (ms *MeshSystem) Count() int {
	return len(ms.meshes)
}

// Release drops one reference. Auto-released meshes free their GPU buffers when the
// last reference goes away.
func (ms *MeshSystem) Release(name string) {
	ref, ok := ms.meshes[name]
	if !ok || ref.referenceCount == 0 {
		core.LogWarn("mesh system release failed to release mesh '%s' properly", name)
		return
	}
	ref.referenceCount--
	if ref.referenceCount == 0 && ref.autoRelease {
		ref.mesh.Release()
		delete(ms.meshes, name)
		core.LogDebug("released mesh '%s', reference count = 0 and auto release = true", name)
	}
}

func (ms *MeshSystem) Shutdown() error {
	for name, ref := range ms.meshes {
		ref.mesh.Release()
		delete(ms.meshes, name)
	}
	return nil
}
