package systems

import (
	"image"

	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/prism/engine/assets"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/resources"
)

/** @brief The name of the default texture. */
const DefaultTextureName string = "default"

type TextureSystemConfig struct {
	/** @brief The maximum number of textures that can be loaded at once. */
	MaxTextureCount uint32
	/** @brief Build and upload the full mip chain of every loaded texture. */
	GenerateMips bool
}

type textureReference struct {
	texture        *resources.Texture
	referenceCount uint32
	autoRelease    bool
}

// TextureSystem loads textures by name through the asset manager and keeps them
// alive while they are referenced.
type TextureSystem struct {
	config         *TextureSystemConfig
	defaultTexture *resources.Texture
	// Hashtable for texture lookups.
	registeredTextureTable map[string]*textureReference
	// sub systems
	driver       *renderer.Driver
	assetManager *assets.AssetManager
	jobSystem    *JobSystem
}

// NewTextureSystem creates the default checkerboard texture. am and js may be nil, in
// which case textures can only be registered from images already in memory.
func NewTextureSystem(config *TextureSystemConfig, driver *renderer.Driver, am *assets.AssetManager, js *JobSystem) (*TextureSystem, error) {
	if config.MaxTextureCount == 0 {
		err := errors.Wrap(core.ErrInvalidConfig, "func NewTextureSystem - config.MaxTextureCount must be > 0")
		core.LogError(err.Error())
		return nil, err
	}
	def, err := driver.CreateTexture(DefaultTextureName, assets.Checkerboard(256, 32), true)
	if err != nil {
		return nil, errors.Wrap(err, "creating default texture")
	}
	return &TextureSystem{
		config:                 config,
		defaultTexture:         def,
		registeredTextureTable: make(map[string]*textureReference),
		driver:                 driver,
		assetManager:           am,
		jobSystem:              js,
	}, nil
}

func (ts *TextureSystem) Default() *resources.Texture {
	return ts.defaultTexture
}

/**
 * @brief Acquires the texture with the given name, loading it through the asset
 * manager on first use. If loading fails the default texture is returned together
 * with the error.
 */
func (ts *TextureSystem) Acquire(name string, autoRelease bool) (*resources.Texture, error) {
	if name == DefaultTextureName {
		core.LogWarn("func texture system Acquire called for default texture. Use Default for texture 'default'")
		return ts.defaultTexture, nil
	}
	if ref, ok := ts.registeredTextureTable[name]; ok {
		ref.referenceCount++
		return ref.texture, nil
	}
	if ts.assetManager == nil {
		return ts.defaultTexture, errors.Wrapf(core.ErrNotFound, "texture %q: no asset manager", name)
	}
	img, err := ts.assetManager.LoadImage(name)
	if err != nil {
		core.LogWarn("texture '%s' not loaded, using default: %s", name, err)
		return ts.defaultTexture, err
	}
	tex, err := ts.register(name, img, autoRelease)
	if err != nil {
		return ts.defaultTexture, err
	}
	return tex, nil
}

// AcquireAsync decodes the named image on the job system and uploads it on the next
// JobSystem.Update. onLoaded receives the default texture and an error on failure.
func (ts *TextureSystem) AcquireAsync(name string, autoRelease bool, onLoaded func(*resources.Texture, error)) error {
	if ref, ok := ts.registeredTextureTable[name]; ok || name == DefaultTextureName {
		tex := ts.defaultTexture
		if ok {
			ref.referenceCount++
			tex = ref.texture
		}
		onLoaded(tex, nil)
		return nil
	}
	if ts.assetManager == nil || ts.jobSystem == nil {
		return errors.Newf("texture %q: asynchronous loading needs an asset manager and a job system", name)
	}
	am := ts.assetManager
	return ts.jobSystem.Submit(JobTask{
		Name: "texture:" + name,
		Run: func() (interface{}, error) {
			return am.LoadImage(name)
		},
		OnComplete: func(result interface{}) {
			// Another load may have finished first.
			if ref, ok := ts.registeredTextureTable[name]; ok {
				ref.referenceCount++
				onLoaded(ref.texture, nil)
				return
			}
			tex, err := ts.register(name, result.(image.Image), autoRelease)
			if err != nil {
				onLoaded(ts.defaultTexture, err)
				return
			}
			onLoaded(tex, nil)
		},
		OnFailure: func(err error) {
			onLoaded(ts.defaultTexture, err)
		},
	})
}

// Register uploads img under name with one reference. The name must not be in use.
func (ts *TextureSystem) Register(name string, img image.Image, autoRelease bool) (*resources.Texture, error) {
	if name == DefaultTextureName {
		return nil, errors.Newf("texture name %q is reserved", name)
	}
	if _, ok := ts.registeredTextureTable[name]; ok {
		return nil, errors.Newf("texture %q already registered", name)
	}
	return ts.register(name, img, autoRelease)
}

func (ts *TextureSystem) register(name string, img image.Image, autoRelease bool) (*resources.Texture, error) {
	if uint32(len(ts.registeredTextureTable)) >= ts.config.MaxTextureCount {
		err := errors.Newf("texture system cannot hold more than %d textures. Adjust configuration to allow more", ts.config.MaxTextureCount)
		core.LogError(err.Error())
		return nil, err
	}
	tex, err := ts.driver.CreateTexture(name, img, ts.config.GenerateMips)
	if err != nil {
		return nil, err
	}
	ts.registeredTextureTable[name] = &textureReference{
		texture:        tex,
		referenceCount: 1,
		autoRelease:    autoRelease,
	}
	return tex, nil
}

// Get returns a registered texture without taking a reference.
func (ts *TextureSystem) Get(name string) (*resources.Texture, bool) {
	if name == DefaultTextureName {
		return ts.defaultTexture, true
	}
	ref, ok := ts.registeredTextureTable[name]
	if !ok {
		return nil, false
	}
	return ref.texture, true
}

// Release drops one reference. Auto-released textures are destroyed when the last
// reference goes away; others stay until Shutdown.
func (ts *TextureSystem) Release(name string) {
	// Ignore release requests for the default texture.
	if name == DefaultTextureName {
		return
	}
	ref, ok := ts.registeredTextureTable[name]
	if !ok || ref.referenceCount == 0 {
		core.LogWarn("texture system release failed to release texture '%s' properly", name)
		return
	}
	ref.referenceCount--
	if ref.referenceCount == 0 && ref.autoRelease {
		ts.driver.RemoveTexture(ref.texture)
		ref.texture.Release()
		delete(ts.registeredTextureTable, name)
		core.LogDebug("released texture '%s', reference count = 0 and auto release = true", name)
	}
}

func (ts *TextureSystem) Count() int {
	return len(ts.registeredTextureTable)
}

func (ts *TextureSystem) Shutdown() error {
	// Destroy all loaded textures.
	for name, ref := range ts.registeredTextureTable {
		ts.driver.RemoveTexture(ref.texture)
		ref.texture.Release()
		delete(ts.registeredTextureTable, name)
	}
	if ts.defaultTexture != nil {
		ts.driver.RemoveTexture(ts.defaultTexture)
		ts.defaultTexture.Release()
		ts.defaultTexture = nil
	}
	return nil
}
