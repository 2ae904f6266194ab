package tool

import (
	"sort"
	"strings"
	"sync"
)

// Catalog is a thread-safe registry mapping tool names to tools. Names are
// matched case-insensitively and stored lowercase.
type Catalog struct {
	mu    sync.RWMutex
	tools map[string]GenericTool
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{tools: map[string]GenericTool{}}
}

// NewCatalogWithTools creates a catalog pre-populated with the given tools,
// keyed by each tool's advertised name.
func NewCatalogWithTools(tools ...GenericTool) *Catalog {
	catalog := NewCatalog()
	catalog.AddTools(tools...)
	return catalog
}

// AddTools registers the given tools. A tool with an already-registered
// name replaces the previous registration.
func (c *Catalog) AddTools(tools ...GenericTool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range tools {
		c.tools[strings.ToLower(t.ToolInfo().Name)] = t
	}
}

// Get retrieves a tool by name (case-insensitive).
func (c *Catalog) Get(name string) (GenericTool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, exists := c.tools[strings.ToLower(name)]
	return t, exists
}

// Has reports whether a tool with the given name is registered.
func (c *Catalog) Has(name string) bool {
	_, exists := c.Get(name)
	return exists
}

// Remove unregisters a tool by name and reports whether it was present.
func (c *Catalog) Remove(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := strings.ToLower(name)
	if _, exists := c.tools[key]; !exists {
		return false
	}
	delete(c.tools, key)
	return true
}

// Names returns the registered tool names, sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.tools))
	for name := range c.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Descriptions returns the advertised metadata of every registered tool,
// ordered by name.
func (c *Catalog) Descriptions() []Description {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.tools))
	for name := range c.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	descriptions := make([]Description, 0, len(names))
	for _, name := range names {
		descriptions = append(descriptions, c.tools[name].ToolInfo())
	}
	return descriptions
}

// Size returns the number of registered tools.
func (c *Catalog) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tools)
}
