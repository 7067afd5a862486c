// Package backends maps scheduler names to scheduler plugins.
package backends

import (
	"sort"
	"strings"

	"github.com/lsst/ctrl-execute/compute"
	"github.com/lsst/ctrl-execute/compute/pbs"
	"github.com/lsst/ctrl-execute/compute/slurm"
)

var registry = map[string]func(*compute.Allocator) compute.Plugin{
	pbs.Name:   func(a *compute.Allocator) compute.Plugin { return pbs.NewPlugin(a) },
	slurm.Name: func(a *compute.Allocator) compute.Plugin { return slurm.NewPlugin(a) },
}

// NewPlugin returns the plugin registered under name, working through alloc.
// Names are case insensitive.
func NewPlugin(name string, alloc *compute.Allocator) (compute.Plugin, error) {
	factory, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, &compute.PluginResolutionError{Name: name}
	}
	return factory(alloc), nil
}

// Names returns the registered scheduler names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
