package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Eliptic23/borja/internal/core"
	"github.com/Eliptic23/borja/internal/tree"
)

// CollectionMeta contains metadata for listing collections.
type CollectionMeta struct {
	ID           string
	Name         string
	Description  string
	Path         string
	RequestCount int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CollectionStore manages personal-workspace collections on the
// filesystem, one YAML file per collection plus an order index. The index
// is what makes positional paths meaningful at the workspace root: the
// first segment of a path is a position in it.
type CollectionStore struct {
	basePath string
}

const orderFile = "order.yaml"

// NewCollectionStore creates a new filesystem-based collection store.
func NewCollectionStore(basePath string) (*CollectionStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create collections directory: %w", err)
	}
	return &CollectionStore{basePath: basePath}, nil
}

// Save persists a collection to disk, appending it to the workspace order
// when it is new.
func (s *CollectionStore) Save(ctx context.Context, c *core.Collection) error {
	data := toStorageFormat(c)

	content, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal collection: %w", err)
	}
	if err := os.WriteFile(s.collectionPath(c.ID()), content, 0644); err != nil {
		return fmt.Errorf("failed to write collection file: %w", err)
	}

	order, err := s.Order(ctx)
	if err != nil {
		return err
	}
	for _, id := range order {
		if id == c.ID() {
			return nil
		}
	}
	return s.writeOrder(append(order, c.ID()))
}

// Get retrieves a collection by ID.
func (s *CollectionStore) Get(ctx context.Context, id string) (*core.Collection, error) {
	return s.loadFromPath(s.collectionPath(id))
}

// List returns all collections in workspace order.
func (s *CollectionStore) List(ctx context.Context) ([]CollectionMeta, error) {
	order, err := s.Order(ctx)
	if err != nil {
		return nil, err
	}

	var collections []CollectionMeta
	for _, id := range order {
		path := s.collectionPath(id)
		c, err := s.loadFromPath(path)
		if err != nil {
			continue // skip invalid files
		}
		collections = append(collections, CollectionMeta{
			ID:           c.ID(),
			Name:         c.Name(),
			Description:  c.Description(),
			Path:         path,
			RequestCount: c.RequestCount(),
			CreatedAt:    c.CreatedAt(),
			UpdatedAt:    c.UpdatedAt(),
		})
	}
	return collections, nil
}

// Delete removes a collection and drops it from the workspace order.
func (s *CollectionStore) Delete(ctx context.Context, id string) error {
	path := s.collectionPath(id)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("collection not found: %s", id)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}

	order, err := s.Order(ctx)
	if err != nil {
		return err
	}
	kept := order[:0]
	for _, entry := range order {
		if entry != id {
			kept = append(kept, entry)
		}
	}
	return s.writeOrder(kept)
}

// Search finds collections whose name or description matches the query.
func (s *CollectionStore) Search(ctx context.Context, query string) ([]CollectionMeta, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	query = strings.ToLower(query)
	var matched []CollectionMeta
	for _, meta := range all {
		if strings.Contains(strings.ToLower(meta.Name), query) ||
			strings.Contains(strings.ToLower(meta.Description), query) {
			matched = append(matched, meta)
		}
	}
	return matched, nil
}

// Order returns collection IDs in workspace order.
func (s *CollectionStore) Order(ctx context.Context) ([]string, error) {
	content, err := os.ReadFile(filepath.Join(s.basePath, orderFile))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read order index: %w", err)
	}
	var order []string
	if err := yaml.Unmarshal(content, &order); err != nil {
		return nil, fmt.Errorf("failed to parse order index: %w", err)
	}
	return order, nil
}

// Reorder moves the collection at position from to position to, with the
// same insert-after semantics as tree.AffectedIndexes.
func (s *CollectionStore) Reorder(ctx context.Context, from, to int) error {
	order, err := s.Order(ctx)
	if err != nil {
		return err
	}
	if from < 0 || from >= len(order) {
		return fmt.Errorf("collection position out of range: %d", from)
	}
	mapping, err := tree.AffectedIndexes(from, to, len(order))
	if err != nil {
		return err
	}
	return s.writeOrder(tree.ApplyIndexMap(order, mapping))
}

// CollectionAt resolves a workspace position to its collection.
func (s *CollectionStore) CollectionAt(ctx context.Context, index int) (*core.Collection, error) {
	order, err := s.Order(ctx)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(order) {
		return nil, fmt.Errorf("collection position out of range: %d", index)
	}
	return s.Get(ctx, order[index])
}

// FolderAt resolves a positional path whose first segment is a workspace
// position and whose remainder addresses folders inside that collection.
func (s *CollectionStore) FolderAt(ctx context.Context, path tree.Path) (*core.Collection, error) {
	if path.IsRoot() {
		return nil, fmt.Errorf("path addresses the workspace root, not a collection")
	}
	idx, ok := path.Segment(0).Idx()
	if !ok {
		return nil, fmt.Errorf("positional path required, got identifier segment")
	}
	coll, err := s.CollectionAt(ctx, idx)
	if err != nil {
		return nil, err
	}
	rest := make([]tree.Segment, 0, path.Len()-1)
	for i := 1; i < path.Len(); i++ {
		rest = append(rest, path.Segment(i))
	}
	folder, ok := coll.FolderAt(tree.NewPath(rest...))
	if !ok {
		return nil, fmt.Errorf("no folder at path %q", path.String())
	}
	return folder, nil
}

func (s *CollectionStore) collectionPath(id string) string {
	return filepath.Join(s.basePath, id+".yaml")
}

func (s *CollectionStore) writeOrder(order []string) error {
	content, err := yaml.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to marshal order index: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.basePath, orderFile), content, 0644); err != nil {
		return fmt.Errorf("failed to write order index: %w", err)
	}
	return nil
}

func (s *CollectionStore) loadFromPath(path string) (*core.Collection, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read collection file: %w", err)
	}
	var data collectionDoc
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("failed to parse collection file: %w", err)
	}
	return fromStorageFormat(data), nil
}

// Storage format. The on-disk shape mirrors the tree: folders nest
// recursively, order in the lists is sibling order.

type collectionDoc struct {
	ID          string          `yaml:"id"`
	Name        string          `yaml:"name"`
	Description string          `yaml:"description,omitempty"`
	Auth        core.AuthConfig `yaml:"auth"`
	Headers     []core.Header   `yaml:"headers,omitempty"`
	Folders     []collectionDoc `yaml:"folders,omitempty"`
	Requests    []requestDoc    `yaml:"requests,omitempty"`
	CreatedAt   time.Time       `yaml:"createdAt,omitempty"`
	UpdatedAt   time.Time       `yaml:"updatedAt,omitempty"`
}

type requestDoc struct {
	ID         string           `yaml:"id"`
	Name       string           `yaml:"name"`
	Method     string           `yaml:"method"`
	URL        string           `yaml:"url"`
	Headers    []core.Header    `yaml:"headers,omitempty"`
	Params     []core.Param     `yaml:"params,omitempty"`
	Body       core.RequestBody `yaml:"body"`
	Auth       core.AuthConfig  `yaml:"auth"`
	PreScript  string           `yaml:"preScript,omitempty"`
	PostScript string           `yaml:"postScript,omitempty"`
}

func toStorageFormat(c *core.Collection) collectionDoc {
	doc := collectionDoc{
		ID:          c.ID(),
		Name:        c.Name(),
		Description: c.Description(),
		Auth:        c.Auth(),
		Headers:     c.Headers(),
		CreatedAt:   c.CreatedAt(),
		UpdatedAt:   c.UpdatedAt(),
	}
	for _, f := range c.Folders() {
		doc.Folders = append(doc.Folders, toStorageFormat(f))
	}
	for _, r := range c.Requests() {
		doc.Requests = append(doc.Requests, requestDoc{
			ID:         r.ID(),
			Name:       r.Name(),
			Method:     r.Method(),
			URL:        r.URL(),
			Headers:    r.Headers(),
			Params:     r.Params(),
			Body:       r.Body(),
			Auth:       r.Auth(),
			PreScript:  r.PreScript(),
			PostScript: r.PostScript(),
		})
	}
	return doc
}

func fromStorageFormat(doc collectionDoc) *core.Collection {
	c := core.NewCollectionWithID(doc.ID, doc.Name)
	c.SetDescription(doc.Description)
	c.SetAuth(doc.Auth)
	c.SetHeaders(doc.Headers)
	for _, f := range doc.Folders {
		c.AddExistingFolder(fromStorageFormat(f))
	}
	for _, r := range doc.Requests {
		req := core.NewRequestWithID(r.ID, r.Name, r.Method, r.URL)
		req.SetHeaders(r.Headers)
		req.SetParams(r.Params)
		req.SetBody(r.Body)
		req.SetAuth(r.Auth)
		req.SetPreScript(r.PreScript)
		req.SetPostScript(r.PostScript)
		c.AddRequest(req)
	}
	c.SetTimestamps(doc.CreatedAt, doc.UpdatedAt)
	return c
}
