package source

import (
	"fmt"
	"sort"
)

var registry = map[string]Mapper{}

// Register adds a mapper under the given source name. Mapper packages
// call this from init; the composition root selects with blank imports.
func Register(name string, m Mapper) {
	registry[name] = m
}

// Get returns the mapper for the given source name.
func Get(name string) (Mapper, error) {
	m, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown source: %s", name)
	}
	return m, nil
}

// Sources returns the names of all registered sources, sorted.
func Sources() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
