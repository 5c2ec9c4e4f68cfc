package editor

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mgpai22/momentnav/internal/logging"
)

// settings handed to editor factories
type Options struct {
	// helper command driving the editor's scripting API (bridge editor)
	BridgeCommand string
	// directory receiving exported clips (ffmpeg editor)
	ExportDir string
	// upper bound for a single bridge invocation; 0 disables it
	CallTimeout time.Duration
	Logger      *logging.Logger
}

// builds a Client for one editor
type Factory func(opts Options) (Client, error)

// Registry maps editor names to factories. New editors are added by
// registering a factory, not by branching on names elsewhere.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// registry with the built-in editors
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.Register(BridgeName, NewBridgeClient)
	r.Register(FFmpegName, NewFFmpegClient)
	return r
}

func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// sorted editor names
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds the named editor client
func (r *Registry) New(name string, opts Options) (Client, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported editor %q (available: %v)", name, r.Names())
	}
	return f(opts)
}
