package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/prism/engine/assets/loaders"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/resources"
)

var ErrManagerClosed = errors.New("asset manager already closed")

type AssetInfo struct {
	Path       string
	Type       resources.ResourceType
	LastLoaded time.Time
}

type AssetOp int

const (
	AssetCreated AssetOp = iota
	AssetModified
	AssetRemoved
)

func (op AssetOp) String() string {
	switch op {
	case AssetCreated:
		return "created"
	case AssetModified:
		return "modified"
	case AssetRemoved:
		return "removed"
	}
	return "unknown"
}

// AssetEvent reports a change to a file under the asset root. Path is slash
// separated and relative to the root.
type AssetEvent struct {
	Path string
	Type resources.ResourceType
	Op   AssetOp
}

const eventBufferSize = 64

type AssetManager struct {
	root    string
	watch   bool
	assets  map[string]AssetInfo
	loaders map[resources.ResourceType]Loader

	mutex sync.RWMutex

	done     chan struct{}
	stopped  chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
	running  bool
	events   chan AssetEvent
}

func NewAssetManager(root string, watch bool) (*AssetManager, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	am := &AssetManager{
		root:    abs,
		watch:   watch,
		assets:  make(map[string]AssetInfo),
		loaders: make(map[resources.ResourceType]Loader),
		events:  make(chan AssetEvent, eventBufferSize),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	if watch {
		fsWatch, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, err
		}
		am.fsnotify = fsWatch
	}
	return am, nil
}

func (am *AssetManager) Initialize() error {
	if s, err := os.Stat(am.root); err != nil {
		return err
	} else if !s.IsDir() {
		return fmt.Errorf("asset root %s is not a directory", am.root)
	}

	// Register loaders
	am.registerLoader(resources.ResourceTypeShaderSource, &loaders.ShaderLoader{})
	am.registerLoader(resources.ResourceTypeShaderBinary, &loaders.BinaryLoader{Type: resources.ResourceTypeShaderBinary})
	am.registerLoader(resources.ResourceTypeBinary, &loaders.BinaryLoader{})
	am.registerLoader(resources.ResourceTypePipeline, &loaders.PipelineLoader{})

	if err := am.watchRecursive(am.root, false); err != nil {
		return err
	}
	if am.watch {
		am.mutex.Lock()
		am.running = true
		am.mutex.Unlock()
		go am.start()
	}
	core.LogInfo("asset manager indexed %d assets under %s", am.Len(), am.root)
	return nil
}

func (am *AssetManager) Root() string {
	return am.root
}

// Events delivers file changes when watching is enabled. Events are dropped
// when the consumer falls behind.
func (am *AssetManager) Events() <-chan AssetEvent {
	return am.events
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType resources.ResourceType, loader Loader) {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.loaders[assetType] = loader
}

// Open implements Opener for paths relative to the asset root.
func (am *AssetManager) Open(name string) (Storage, error) {
	return Dir(am.root).Open(name)
}

// Load an asset using the appropriate loader
func (am *AssetManager) LoadAsset(name string, params interface{}) (*resources.Resource, error) {
	name = filepath.ToSlash(name)

	am.mutex.RLock()
	asset, exists := am.assets[name]
	am.mutex.RUnlock()
	if !exists {
		// Files created after the last scan are still loadable.
		asset = AssetInfo{Path: name, Type: DetermineAssetType(name)}
		if asset.Type == resources.ResourceTypeNone {
			return nil, fmt.Errorf("no loader for asset %s", name)
		}
	}

	am.mutex.RLock()
	loader, loaderExists := am.loaders[asset.Type]
	am.mutex.RUnlock()
	if !loaderExists {
		return nil, fmt.Errorf("no loader registered for asset type: %s", asset.Type)
	}

	st, err := am.Open(name)
	if err != nil {
		return nil, err
	}
	res, err := loader.Load(name, st.Data(), params)
	if err != nil {
		return nil, err
	}

	am.mutex.Lock()
	asset.LastLoaded = time.Now()
	am.assets[name] = asset
	am.mutex.Unlock()
	return res, nil
}

func (am *AssetManager) UnloadAsset(res *resources.Resource) error {
	am.mutex.RLock()
	loader, ok := am.loaders[res.Type]
	am.mutex.RUnlock()
	if !ok {
		return fmt.Errorf("no loader registered for asset type: %s", res.Type)
	}
	return loader.Unload(res)
}

// Assets lists the indexed paths of the given type, sorted.
func (am *AssetManager) Assets(rt resources.ResourceType) []string {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	var out []string
	for p, a := range am.assets {
		if a.Type == rt {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

func (am *AssetManager) Len() int {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	return len(am.assets)
}

func (am *AssetManager) Shutdown() error {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return ErrManagerClosed
	}
	am.isClosed = true
	running := am.running
	am.mutex.Unlock()

	close(am.done)
	if running {
		<-am.stopped
	}
	if am.fsnotify != nil {
		return am.fsnotify.Close()
	}
	return nil
}

func (am *AssetManager) start() {
	defer close(am.stopped)
	for {
		select {

		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			am.handleWatchEvent(e)

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("asset watcher: %s", err)

		case <-am.done:
			return
		}
	}
}

func (am *AssetManager) handleWatchEvent(e fsnotify.Event) {
	s, err := os.Stat(e.Name)
	if err == nil && s.IsDir() {
		if e.Has(fsnotify.Create) {
			if err := am.watchRecursive(e.Name, false); err != nil {
				core.LogWarn("failed to watch %s: %s", e.Name, err)
			}
		}
		return
	}

	rel, err := am.relative(e.Name)
	if err != nil {
		return
	}
	switch {
	case e.Has(fsnotify.Create):
		if am.handleFileEvent(rel) {
			am.emit(AssetEvent{Path: rel, Type: DetermineAssetType(rel), Op: AssetCreated})
		}
	case e.Has(fsnotify.Write):
		if am.handleFileEvent(rel) {
			am.emit(AssetEvent{Path: rel, Type: DetermineAssetType(rel), Op: AssetModified})
		}
	case e.Has(fsnotify.Remove), e.Has(fsnotify.Rename):
		// Can't stat a deleted path, the watch list entry goes away by itself.
		if am.removeAsset(rel) {
			am.emit(AssetEvent{Path: rel, Type: DetermineAssetType(rel), Op: AssetRemoved})
		}
	}
}

func (am *AssetManager) emit(ev AssetEvent) {
	select {
	case am.events <- ev:
	default:
		core.LogWarn("asset event queue full, dropping %s %s", ev.Op, ev.Path)
	}
}

// watchRecursive indexes every file under path and, when watching, adds all
// directories to the watch list.
func (am *AssetManager) watchRecursive(path string, unWatch bool) error {
	return filepath.WalkDir(path, func(walkPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if am.fsnotify == nil {
				return nil
			}
			if unWatch {
				return am.fsnotify.Remove(walkPath)
			}
			return am.fsnotify.Add(walkPath)
		}
		rel, err := am.relative(walkPath)
		if err != nil {
			return err
		}
		am.handleFileEvent(rel)
		return nil
	})
}

func (am *AssetManager) relative(p string) (string, error) {
	rel, err := filepath.Rel(am.root, p)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%s is outside the asset root", p)
	}
	return filepath.ToSlash(rel), nil
}

// Handle the creation or modification of a file. Returns false for ignored files.
func (am *AssetManager) handleFileEvent(path string) bool {
	assetType := DetermineAssetType(path)
	if assetType == resources.ResourceTypeNone {
		return false
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.assets[path] = AssetInfo{
		Path: path,
		Type: assetType,
	}
	return true
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) bool {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	_, ok := am.assets[path]
	delete(am.assets, path)
	return ok
}

func DetermineAssetType(path string) resources.ResourceType {
	if strings.HasSuffix(path, loaders.PipelineExtension) {
		return resources.ResourceTypePipeline
	}
	switch filepath.Ext(path) {
	case ".glsl", ".vert", ".frag", ".geom", ".comp":
		return resources.ResourceTypeShaderSource
	case ".spv":
		return resources.ResourceTypeShaderBinary
	case ".bin":
		return resources.ResourceTypeBinary
	default:
		return resources.ResourceTypeNone
	}
}
