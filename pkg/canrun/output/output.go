// Package output provides formatters for rendering readiness reports in
// various formats (text, json, pretty).
//
// The package uses a registry pattern so formatters can be selected at
// runtime by name.
//
// Basic usage:
//
//	formatter, err := output.Get("text")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, doc); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(buf.String())
package output

import (
	"bytes"
	"fmt"
	"sort"
	"sync"

	"github.com/jamesainslie/canrun/pkg/canrun/logging"
	"github.com/jamesainslie/canrun/pkg/canrun/types"
)

// logger is the package-level logger for output operations.
var logger = logging.Get("output")

// Document is the unit formatters render: the readiness report plus the
// evidence behind it for verbose output.
type Document struct {
	// Report is the assembled readiness report.
	Report types.Report `json:"report"`

	// ProjectPath is the project directory the report describes.
	ProjectPath string `json:"project_path"`

	// ManifestPath is the manifest behind the declared requirements,
	// empty when inference supplied everything.
	ManifestPath string `json:"manifest_path,omitempty"`

	// Requirements carries requirement provenance in canonical kind
	// order.
	Requirements []types.Requirement `json:"requirements,omitempty"`

	// Probes carries the raw measurements in canonical kind order.
	Probes []types.Measurement `json:"probes,omitempty"`

	// Dependencies lists the project's declared packages keyed by
	// ecosystem.
	Dependencies map[string][]string `json:"dependencies,omitempty"`

	// Verbose enables the evidence sections in the text and pretty
	// formatters; the json formatter emits the whole document instead of
	// just the report.
	Verbose bool `json:"-"`
}

// NewDocument assembles a document, ordering the probe and requirement
// evidence canonically. Either map may be nil.
func NewDocument(
	projectPath string,
	report types.Report,
	measurements map[types.ResourceKind]types.Measurement,
	requirements map[types.ResourceKind]types.Requirement,
) *Document {
	doc := &Document{
		Report:      report,
		ProjectPath: projectPath,
	}
	for _, kind := range types.Kinds() {
		if m, ok := measurements[kind]; ok {
			doc.Probes = append(doc.Probes, m)
		}
		if req, ok := requirements[kind]; ok {
			doc.Requirements = append(doc.Requirements, req)
		}
	}
	return doc
}

// Formatter is the interface all output formatters implement.
type Formatter interface {
	// Format writes the rendered document to the buffer.
	// It returns an error if formatting fails.
	Format(w *bytes.Buffer, d *Document) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FormatterFactory),
	}
}

// Register adds a formatter factory to the registry.
// It will replace any existing formatter with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
// It returns an error if the formatter is not found.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrUnknownFormat, name)
	}
	return factory(), nil
}

// Available returns a sorted list of all registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}
