// Package theme applies the theme slice to a rendered document and keeps the
// durable "theme" preference in sync with it.
package theme

import (
	"sort"
	"strings"
	"sync"
)

// Class names applied to the document root.
const (
	ClassLight = "light"
	ClassDark  = "dark"
)

// Document is the class list of the document root element.
type Document interface {
	AddClass(name string)
	RemoveClass(name string)
}

// ClassList is an in-memory Document. The HTTP layer renders it into the
// page's root element.
type ClassList struct {
	mu      sync.RWMutex
	classes map[string]struct{}
}

// NewClassList creates an empty ClassList.
func NewClassList() *ClassList {
	return &ClassList{classes: make(map[string]struct{})}
}

func (c *ClassList) AddClass(name string) {
	c.mu.Lock()
	c.classes[name] = struct{}{}
	c.mu.Unlock()
}

func (c *ClassList) RemoveClass(name string) {
	c.mu.Lock()
	delete(c.classes, name)
	c.mu.Unlock()
}

// Has reports whether name is present.
func (c *ClassList) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.classes[name]
	return ok
}

// Classes returns the class names sorted.
func (c *ClassList) Classes() []string {
	c.mu.RLock()
	out := make([]string, 0, len(c.classes))
	for name := range c.classes {
		out = append(out, name)
	}
	c.mu.RUnlock()
	sort.Strings(out)
	return out
}

// String renders the list as a class attribute value.
func (c *ClassList) String() string {
	return strings.Join(c.Classes(), " ")
}
