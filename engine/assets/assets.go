package assets

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/prism/engine/core"
)

type AssetType int

const (
	AssetTypeNone AssetType = iota
	AssetTypeImage
	AssetTypeMesh
)

func (t AssetType) String() string {
	switch t {
	case AssetTypeImage:
		return "image"
	case AssetTypeMesh:
		return "mesh"
	}
	return "none"
}

type AssetInfo struct {
	Name       string
	Path       string
	Type       AssetType
	LastLoaded time.Time
}

type Loader interface {
	Load(path string) (interface{}, error)
}

type assetKey struct {
	name string
	kind AssetType
}

// AssetManager indexes image and mesh descriptor files below a directory and keeps
// the index current while files are created, written or removed.
type AssetManager struct {
	assets  map[assetKey]AssetInfo
	loaders map[AssetType]Loader

	mutex sync.RWMutex

	onChange func(AssetInfo)
	done     chan struct{}
	wg       sync.WaitGroup
	fsnotify *fsnotify.Watcher
	isClosed bool
}

func NewAssetManager() (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	am := &AssetManager{
		assets:   make(map[assetKey]AssetInfo),
		loaders:  make(map[AssetType]Loader),
		fsnotify: fsWatch,
		done:     make(chan struct{}),
	}
	am.registerLoader(AssetTypeImage, &imageLoader{})
	am.registerLoader(AssetTypeMesh, &meshLoader{})
	return am, nil
}

func (am *AssetManager) Initialize(assetsDir string) error {
	if err := am.addRecursive(assetsDir); err != nil {
		return err
	}
	am.wg.Add(1)
	go am.start()
	return nil
}

// OnChange registers fn to be called from the watcher goroutine whenever an indexed
// asset is created or written.
func (am *AssetManager) OnChange(fn func(AssetInfo)) {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.onChange = fn
}

// addRecursive starts watching the named directory and all sub-directories.
func (am *AssetManager) addRecursive(name string) error {
	if am.isClosed {
		return errors.New("asset watcher already closed")
	}
	return am.watchRecursive(name)
}

func (am *AssetManager) registerLoader(assetType AssetType, loader Loader) {
	am.loaders[assetType] = loader
}

// Assets returns the indexed assets sorted by name.
func (am *AssetManager) Assets() []AssetInfo {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	out := make([]AssetInfo, 0, len(am.assets))
	for _, a := range am.assets {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Type < out[j].Type
	})
	return out
}

// LoadAsset loads the named asset of the given type from disk.
func (am *AssetManager) LoadAsset(name string, assetType AssetType) (interface{}, error) {
	key := assetKey{name: name, kind: assetType}
	am.mutex.Lock()
	asset, exists := am.assets[key]
	if exists {
		asset.LastLoaded = time.Now()
		am.assets[key] = asset
	}
	am.mutex.Unlock()
	if !exists {
		return nil, errors.Wrapf(core.ErrNotFound, "%s asset %q", assetType, name)
	}

	loader, loaderExists := am.loaders[asset.Type]
	if !loaderExists {
		return nil, errors.Newf("no loader registered for asset type: %s", asset.Type)
	}
	return loader.Load(asset.Path)
}

func (am *AssetManager) LoadMesh(name string) (*CPUMesh, error) {
	res, err := am.LoadAsset(name, AssetTypeMesh)
	if err != nil {
		return nil, err
	}
	return res.(*CPUMesh), nil
}

func (am *AssetManager) Shutdown() error {
	if am.isClosed {
		return nil
	}
	am.isClosed = true
	close(am.done)
	am.wg.Wait()
	return am.fsnotify.Close()
}

func (am *AssetManager) start() {
	defer am.wg.Done()
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			s, err := os.Stat(e.Name)
			if err == nil && s != nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					if err := am.watchRecursive(e.Name); err != nil {
						core.LogWarn("could not watch %s: %s", e.Name, err)
					}
				}
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				if info, ok := am.handleFileEvent(e.Name); ok {
					am.notify(info)
				}
			}
			// A removed path cannot be stat'ed, so always try to drop it from the index and the watch list.
			if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				am.removeAsset(e.Name)
				_ = am.fsnotify.Remove(e.Name)
			}

		case e, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(e.Error())

		case <-am.done:
			return
		}
	}
}

func (am *AssetManager) notify(info AssetInfo) {
	am.mutex.RLock()
	fn := am.onChange
	am.mutex.RUnlock()
	if fn != nil {
		fn(info)
	}
}

// watchRecursive adds all directories under path to the watch list and indexes the files found.
func (am *AssetManager) watchRecursive(path string) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return am.fsnotify.Add(walkPath)
		}
		am.handleFileEvent(walkPath)
		return nil
	})
}

func (am *AssetManager) handleFileEvent(path string) (AssetInfo, bool) {
	assetType := determineAssetType(path)
	if assetType == AssetTypeNone {
		return AssetInfo{}, false
	}
	info := AssetInfo{
		Name:       assetName(path),
		Path:       filepath.Clean(path),
		Type:       assetType,
		LastLoaded: time.Now(),
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.assets[assetKey{name: info.Name, kind: assetType}] = info
	return info, true
}

func (am *AssetManager) removeAsset(path string) {
	assetType := determineAssetType(path)
	if assetType == AssetTypeNone {
		return
	}
	am.mutex.Lock()
	defer am.mutex.Unlock()
	delete(am.assets, assetKey{name: assetName(path), kind: assetType})
}

func assetName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func determineAssetType(path string) AssetType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg":
		return AssetTypeImage
	case ".mesh":
		return AssetTypeMesh
	default:
		return AssetTypeNone
	}
}
