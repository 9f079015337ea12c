package systems

import (
	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/prism/engine/assets"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer"
)

type SystemManager struct {
	jobSystem          *JobSystem
	materialSystem     *MaterialSystem
	textureSystem      *TextureSystem
	meshSystem         *MeshSystem
	indirectDrawSystem *IndirectDrawSystem
}

// NewSystemManager creates every system on top of driver and registers the material
// system as the driver's material lookup. am may be nil.
func NewSystemManager(config *core.EngineConfig, driver *renderer.Driver, am *assets.AssetManager) (*SystemManager, error) {
	policy, err := renderer.ParsePackingPolicy(config.Mesh.Packing)
	if err != nil {
		return nil, errors.Mark(err, core.ErrInvalidConfig)
	}

	sm := &SystemManager{}
	js, err := NewJobSystem(config.Systems.Workers, config.Systems.JobQueueSize)
	if err != nil {
		return nil, err
	}
	sm.jobSystem = js

	ms, err := NewMaterialSystem(&MaterialSystemConfig{
		MaxMaterialCount: config.Systems.MaxMaterials,
	})
	if err != nil {
		sm.Shutdown()
		return nil, err
	}
	sm.materialSystem = ms
	driver.SetMaterialLookup(ms.Capabilities)

	ts, err := NewTextureSystem(&TextureSystemConfig{
		MaxTextureCount: config.Systems.MaxTextures,
		GenerateMips:    config.Systems.GenerateMips,
	}, driver, am, js)
	if err != nil {
		sm.Shutdown()
		return nil, err
	}
	sm.textureSystem = ts

	mesh, err := NewMeshSystem(&MeshSystemConfig{
		MaxMeshCount: config.Systems.MaxMeshes,
		Packing:      policy,
	}, driver, am, js)
	if err != nil {
		sm.Shutdown()
		return nil, err
	}
	sm.meshSystem = mesh

	ids, err := NewIndirectDrawSystem(driver)
	if err != nil {
		sm.Shutdown()
		return nil, err
	}
	sm.indirectDrawSystem = ids

	return sm, nil
}

func (sm *SystemManager) JobSystem() *JobSystem                   { return sm.jobSystem }
func (sm *SystemManager) MaterialSystem() *MaterialSystem         { return sm.materialSystem }
func (sm *SystemManager) TextureSystem() *TextureSystem           { return sm.textureSystem }
func (sm *SystemManager) MeshSystem() *MeshSystem                 { return sm.meshSystem }
func (sm *SystemManager) IndirectDrawSystem() *IndirectDrawSystem { return sm.indirectDrawSystem }

// Update dispatches finished background jobs. Call once per frame on the render thread.
func (sm *SystemManager) Update() {
	if sm.jobSystem != nil {
		sm.jobSystem.Update()
	}
}

// Shutdown stops the systems in reverse creation order. Every system is shut down
// even if an earlier one fails; the errors are combined.
func (sm *SystemManager) Shutdown() error {
	var err error
	// Drain the workers first so no load completes into a stopped system.
	if sm.jobSystem != nil {
		err = errors.CombineErrors(err, sm.jobSystem.Shutdown())
	}
	if sm.indirectDrawSystem != nil {
		err = errors.CombineErrors(err, sm.indirectDrawSystem.Shutdown())
	}
	if sm.meshSystem != nil {
		err = errors.CombineErrors(err, sm.meshSystem.Shutdown())
	}
	if sm.textureSystem != nil {
		err = errors.CombineErrors(err, sm.textureSystem.Shutdown())
	}
	if sm.materialSystem != nil {
		err = errors.CombineErrors(err, sm.materialSystem.Shutdown())
	}
	return err
}
