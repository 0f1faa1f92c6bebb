// Package osi keeps the registry of operating system and feature
// interface strings the platform may probe for. Vendor strings carry
// an ordinal value so callers can tell which generation matched;
// feature strings only exist or not.
package osi

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/acpikit/acpikit/errz"
)

// Interface is one supported interface string.
type Interface struct {
	Name    string
	Value   uint32
	Feature bool
}

// The default support list: OS vendor strings in release order plus
// the optional feature groups.
var defaults = []Interface{
	{Name: "Windows 2000", Value: 0x01},
	{Name: "Windows 2001", Value: 0x02},
	{Name: "Windows 2001 SP1", Value: 0x03},
	{Name: "Windows 2001.1", Value: 0x04},
	{Name: "Windows 2006", Value: 0x07},
	{Name: "Windows 2009", Value: 0x0B},
	{Name: "Windows 2012", Value: 0x0C},
	{Name: "Windows 2013", Value: 0x0D},
	{Name: "Windows 2015", Value: 0x0E},
	{Name: "Extended Address Space Descriptor", Feature: true},
	{Name: "Module Device", Feature: true},
	{Name: "Processor Device", Feature: true},
	{Name: "3.0 Thermal Model", Feature: true},
	{Name: "3.0 _SCP Extensions", Feature: true},
	{Name: "Processor Aggregator Device", Feature: true},
}

// Registry is the mutable support list.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Interface
	log    zerolog.Logger
}

// NewRegistry returns a registry preloaded with the default support
// list.
func NewRegistry(log zerolog.Logger) *Registry {
	r := &Registry{log: log}
	r.Reset()
	return r
}

// Install adds an interface string. Installing a name that is already
// present is rejected; remove it first.
func (r *Registry) Install(iface Interface) error {
	if iface.Name == "" {
		return errz.New(errz.BadParameter, "an interface name is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[iface.Name]; ok {
		return errz.Newf(errz.BadParameter, "interface %q is already installed", iface.Name)
	}
	r.byName[iface.Name] = iface
	r.log.Debug().Str("name", iface.Name).Msg("installed interface")
	return nil
}

// Remove deletes an interface string.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[name]; !ok {
		return errz.Newf(errz.BadParameter, "interface %q is not installed", name)
	}
	delete(r.byName, name)
	r.log.Debug().Str("name", name).Msg("removed interface")
	return nil
}

// Lookup returns the interface with the given name.
func (r *Registry) Lookup(name string) (Interface, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	iface, ok := r.byName[name]
	return iface, ok
}

// Match reports whether the given name is supported.
func (r *Registry) Match(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// List returns every installed interface sorted by name.
func (r *Registry) List() []Interface {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Interface, 0, len(r.byName))
	for _, iface := range r.byName {
		out = append(out, iface)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of installed interfaces.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}

// Reset restores the default support list, dropping every
// caller-installed string.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName = make(map[string]Interface, len(defaults))
	for _, iface := range defaults {
		r.byName[iface.Name] = iface
	}
}
