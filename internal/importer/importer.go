package importer

import (
	"context"
	"errors"

	"github.com/Eliptic23/borja/internal/core"
)

// Common errors
var (
	ErrInvalidFormat   = errors.New("invalid format")
	ErrMissingRequired = errors.New("missing required field")
	ErrParseError      = errors.New("parse error")
)

// Format represents a supported import format.
type Format string

const (
	FormatAuto     Format = "auto"
	FormatInsomnia Format = "insomnia"
)

// Importer defines the interface for importing collections from external
// formats. One foreign document may yield any number of collections.
type Importer interface {
	// Name returns the name of this importer.
	Name() string

	// Format returns the format this importer handles.
	Format() Format

	// FileExtensions returns the file extensions this importer can handle.
	FileExtensions() []string

	// DetectFormat checks if the content matches this importer's format.
	DetectFormat(content []byte) bool

	// Import parses the content and returns the collections it contains.
	Import(ctx context.Context, content []byte) ([]*core.Collection, error)
}

// ImportResult contains the result of importing one document.
type ImportResult struct {
	Collections  []*core.Collection
	SourceFormat Format
}

// DocumentResult pairs one document of a batch with its outcome. Failures
// are per-document; a bad document never poisons its neighbors.
type DocumentResult struct {
	Result *ImportResult
	Err    error
}

// Registry holds all registered importers.
type Registry struct {
	importers map[Format]Importer
}

// NewRegistry creates a new importer registry.
func NewRegistry() *Registry {
	return &Registry{
		importers: make(map[Format]Importer),
	}
}

// DefaultRegistry returns a registry with every built-in importer.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewInsomniaImporter())
	return r
}

// Register adds an importer to the registry.
func (r *Registry) Register(imp Importer) {
	r.importers[imp.Format()] = imp
}

// Get returns an importer by format.
func (r *Registry) Get(format Format) (Importer, bool) {
	imp, ok := r.importers[format]
	return imp, ok
}

// DetectAndImport automatically detects the format and imports the content.
func (r *Registry) DetectAndImport(ctx context.Context, content []byte) (*ImportResult, error) {
	for _, imp := range r.importers {
		if imp.DetectFormat(content) {
			colls, err := imp.Import(ctx, content)
			if err != nil {
				return nil, err
			}
			return &ImportResult{
				Collections:  colls,
				SourceFormat: imp.Format(),
			}, nil
		}
	}
	return nil, ErrInvalidFormat
}

// Import imports content using the specified format.
func (r *Registry) Import(ctx context.Context, format Format, content []byte) (*ImportResult, error) {
	if format == FormatAuto {
		return r.DetectAndImport(ctx, content)
	}

	imp, ok := r.importers[format]
	if !ok {
		return nil, ErrInvalidFormat
	}

	colls, err := imp.Import(ctx, content)
	if err != nil {
		return nil, err
	}

	return &ImportResult{
		Collections:  colls,
		SourceFormat: format,
	}, nil
}

// ImportAll imports a batch of documents, collecting one result per
// document.
func (r *Registry) ImportAll(ctx context.Context, format Format, docs [][]byte) []DocumentResult {
	results := make([]DocumentResult, 0, len(docs))
	for _, doc := range docs {
		res, err := r.Import(ctx, format, doc)
		results = append(results, DocumentResult{Result: res, Err: err})
	}
	return results
}

// ListFormats returns all registered formats.
func (r *Registry) ListFormats() []Format {
	formats := make([]Format, 0, len(r.importers))
	for f := range r.importers {
		formats = append(formats, f)
	}
	return formats
}
