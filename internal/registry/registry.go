// Package registry provides a global registry for scene factories.
// Games register themselves in init() functions, allowing the CLI
// to discover and launch scenes without hardcoded dependencies.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/gridstage/internal/scene"
)

// ErrUnknown is returned by Create for an unregistered id.
var ErrUnknown = errors.New("registry: unknown scene")

// Options carries launch settings from the CLI to a factory.
type Options struct {
	Seed       int64  // 0 means time-based
	ConfigPath string // game-specific config file, empty for the search order
	LevelsDir  string // overrides embedded levels when set
	Level      string // level id, empty for the first one
	Difficulty string // preset name, empty keeps the config file's settings
	Spacing    float64
}

// Factory builds the first scene of a game. The scene is pushed by the caller.
type Factory func(opts Options) (*scene.Scene, error)

// Info contains metadata about a registered scene factory.
type Info struct {
	ID    string
	Title string
}

var (
	factories = make(map[string]Factory)
	titles    = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds a scene factory to the registry.
// Typically called from a game's init() function.
// Panics if a factory with the same ID is already registered.
func Register(id, title string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: scene %q already registered", id))
	}

	factories[id] = f
	titles[id] = title
}

// List returns information about all registered factories, sorted by ID.
func List() []Info {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]Info, 0, len(factories))
	for id := range factories {
		result = append(result, Info{
			ID:    id,
			Title: titles[id],
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Create builds the scene registered under id.
func Create(id string, opts Options) (*scene.Scene, error) {
	mu.RLock()
	f, ok := factories[id]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknown, id)
	}

	s, err := f(opts)
	if err != nil {
		return nil, fmt.Errorf("registry: creating %q: %w", id, err)
	}
	return s, nil
}

// Exists checks if a factory with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}
