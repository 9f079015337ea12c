package testbed

import (
	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/prism/engine"
	"github.com/spaghettifunk/prism/engine/assets"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/resources"
)

const (
	cubeMeshName  = "testbed_cube"
	floorMeshName = "testbed_floor"
	checkerName   = "testbed_checker"
	// loaded from the assets directory when one is configured
	brickName = "brick"

	// frames between two occlusion reports
	reportInterval = 240
)

type TestGame struct {
	*engine.Game
}

type gameState struct {
	width  uint32
	height uint32

	opaque *resources.Pipeline
	lit    *resources.Pipeline

	cube  *resources.Mesh
	floor *resources.Mesh
	faces []*resources.MeshBuffer
	brick *resources.Texture

	floorQuery *resources.OcclusionQuery
	frame      uint64
}

func NewTestGame(config *engine.ApplicationConfig) *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: config,
			State: &gameState{
				opaque: &resources.Pipeline{ID: 1, Name: "opaque"},
				lit:    &resources.Pipeline{ID: 2, Name: "lit"},
			},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg
}

func (g *TestGame) state() *gameState {
	return g.State.(*gameState)
}

func (g *TestGame) Initialize() error {
	core.LogInfo("initializing testbed...")
	state := g.state()
	textures := g.SystemManager.TextureSystem()
	meshes := g.SystemManager.MeshSystem()

	checker, err := textures.Register(checkerName, assets.Checkerboard(128, 16), false)
	if err != nil {
		return err
	}

	state.cube, err = meshes.AcquireFromCPU(cubeMeshName, assets.GenerateCube(cubeMeshName, 2, 2, 2, 1, 1, assets.LayoutSeparate), false)
	if err != nil {
		return err
	}
	state.floor, err = meshes.AcquireFromCPU(floorMeshName, assets.GeneratePlane(floorMeshName, 20, 20, 4, 4, 8, 8, assets.LayoutInterleaved), false)
	if err != nil {
		return err
	}
	if report, ok := meshes.Report(cubeMeshName); ok {
		core.LogDebug("cube converted with %s: %d buffers", meshes.Packing(), report.Converted)
	}

	cube := state.cube.MeshBuffers()[0]
	material := cube.Material()
	material.Layers[0].Texture = checker
	cube.SetMaterial(material)

	// Each side of the cube becomes its own draw; the first three share the opaque
	// pipeline, the rest go through the lit one.
	for side := uint32(0); side < 6; side++ {
		face, err := cube.SubRange(side*6, 6)
		if err != nil {
			return err
		}
		state.faces = append(state.faces, face)
		pipeline := state.opaque
		if side >= 3 {
			pipeline = state.lit
		}
		if err := g.SystemManager.IndirectDrawSystem().Add(face, pipeline); err != nil {
			return err
		}
	}

	state.floorQuery, err = g.Driver.CreateOcclusionQuery(true)
	if err != nil {
		return err
	}

	if g.ApplicationConfig.AssetsDir == "" {
		return nil
	}
	return textures.AcquireAsync(brickName, false, func(t *resources.Texture, err error) {
		if err != nil {
			core.LogWarn("floor keeps the default texture: %s", err)
			return
		}
		state.brick = t
		floor := state.floor.MeshBuffers()[0]
		m := floor.Material()
		m.Layers[0].Texture = t
		floor.SetMaterial(m)
		core.LogInfo("floor textured with %s (%dx%d)", t.Name, t.Width, t.Height)
	})
}

func (g *TestGame) Update(deltaTime float64) error {
	state := g.state()
	state.frame++
	if state.frame%reportInterval != 0 {
		return nil
	}
	switch visible := g.Driver.UpdateOcclusionQuery(state.floorQuery, false); visible {
	case renderer.OcclusionPending:
		core.LogDebug("floor visibility pending")
	default:
		core.LogDebug("floor visible: %t", visible > 0)
	}
	return nil
}

func (g *TestGame) Render(deltaTime float64) error {
	state := g.state()
	if err := g.SystemManager.IndirectDrawSystem().Render(); err != nil {
		return err
	}

	if err := g.Driver.BeginOcclusionQuery(state.floorQuery); err != nil {
		return err
	}
	for _, mb := range state.floor.MeshBuffers() {
		if err := g.Driver.DrawMeshBuffer(mb, nil); err != nil {
			return errors.CombineErrors(err, g.Driver.EndOcclusionQuery(state.floorQuery))
		}
	}
	return g.Driver.EndOcclusionQuery(state.floorQuery)
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	state := g.state()
	state.width = width
	state.height = height
	return nil
}

func (g *TestGame) Shutdown() error {
	core.LogInfo("shutting down testbed...")
	state := g.state()
	g.SystemManager.IndirectDrawSystem().Clear()
	for _, face := range state.faces {
		face.Release()
	}
	state.faces = nil
	if state.floorQuery != nil {
		state.floorQuery.Release()
		state.floorQuery = nil
	}
	meshes := g.SystemManager.MeshSystem()
	meshes.Release(cubeMeshName)
	meshes.Release(floorMeshName)
	if state.brick != nil {
		g.SystemManager.TextureSystem().Release(brickName)
	}
	g.SystemManager.TextureSystem().Release(checkerName)
	// Drop the vertex format the driver keeps bound from the last draw.
	return g.Driver.DrawMeshBuffer(nil, nil)
}
