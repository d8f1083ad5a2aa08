package core

import (
	"time"

	"github.com/google/uuid"

	"github.com/Eliptic23/borja/internal/tree"
)

// Collection is an ordered container of sub-collections and requests.
// Folders are themselves collections; the same type forms every level of
// the tree. Sibling order is semantically meaningful - in personal
// workspaces a node's position is its address.
type Collection struct {
	id          string
	name        string
	description string
	folders     []*Collection
	requests    []*Request
	auth        AuthConfig
	headers     []Header
	createdAt   time.Time
	updatedAt   time.Time
}

// Header is one entry of an ordered header list.
type Header struct {
	Key    string `json:"key" yaml:"key"`
	Value  string `json:"value" yaml:"value"`
	Active bool   `json:"active" yaml:"active"`
}

// Param is one entry of an ordered query-parameter list.
type Param struct {
	Key    string `json:"key" yaml:"key"`
	Value  string `json:"value" yaml:"value"`
	Active bool   `json:"active" yaml:"active"`
}

// NewCollection creates a new collection with the given name.
func NewCollection(name string) *Collection {
	now := time.Now()
	return &Collection{
		id:        uuid.New().String(),
		name:      name,
		auth:      AuthConfig{Type: AuthInherit, Active: true},
		folders:   make([]*Collection, 0),
		requests:  make([]*Request, 0),
		createdAt: now,
		updatedAt: now,
	}
}

// NewCollectionWithID creates a collection with a specific ID (for loading
// from storage).
func NewCollectionWithID(id, name string) *Collection {
	c := NewCollection(name)
	c.id = id
	return c
}

func (c *Collection) ID() string           { return c.id }
func (c *Collection) Name() string         { return c.name }
func (c *Collection) Description() string  { return c.description }
func (c *Collection) Auth() AuthConfig     { return c.auth }
func (c *Collection) Headers() []Header    { return c.headers }
func (c *Collection) CreatedAt() time.Time { return c.createdAt }
func (c *Collection) UpdatedAt() time.Time { return c.updatedAt }

func (c *Collection) SetName(name string) {
	c.name = name
	c.touch()
}

func (c *Collection) SetDescription(desc string) {
	c.description = desc
	c.touch()
}

func (c *Collection) SetAuth(auth AuthConfig) {
	c.auth = auth
	c.touch()
}

func (c *Collection) SetHeaders(headers []Header) {
	c.headers = headers
	c.touch()
}

// SetTimestamps sets created and updated timestamps (for loading from
// storage).
func (c *Collection) SetTimestamps(created, updated time.Time) {
	c.createdAt = created
	c.updatedAt = updated
}

func (c *Collection) touch() {
	c.updatedAt = time.Now()
}

// Folders returns the ordered child collections.
func (c *Collection) Folders() []*Collection { return c.folders }

// Requests returns the ordered requests.
func (c *Collection) Requests() []*Request { return c.requests }

// AddFolder appends a new child collection.
func (c *Collection) AddFolder(name string) *Collection {
	folder := NewCollection(name)
	c.folders = append(c.folders, folder)
	c.touch()
	return folder
}

// AddExistingFolder appends an already-created child collection.
func (c *Collection) AddExistingFolder(f *Collection) {
	c.folders = append(c.folders, f)
	c.touch()
}

// AddRequest appends a request.
func (c *Collection) AddRequest(req *Request) {
	c.requests = append(c.requests, req)
	c.touch()
}

// FolderAt resolves a positional path of sibling indices against the
// folder lists, starting at this collection. The empty path resolves to
// the collection itself.
func (c *Collection) FolderAt(path tree.Path) (*Collection, bool) {
	node := c
	for i := 0; i < path.Len(); i++ {
		idx, ok := path.Segment(i).Idx()
		if !ok || idx < 0 || idx >= len(node.folders) {
			return nil, false
		}
		node = node.folders[idx]
	}
	return node, true
}

// RequestAt resolves a positional folder path plus a request index.
func (c *Collection) RequestAt(folderPath tree.Path, index int) (*Request, bool) {
	folder, ok := c.FolderAt(folderPath)
	if !ok || index < 0 || index >= len(folder.requests) {
		return nil, false
	}
	return folder.requests[index], true
}

// MoveRequest relocates the request at position from within the folder at
// path to position to, with the same insert-after semantics as
// tree.AffectedIndexes.
func (c *Collection) MoveRequest(path tree.Path, from, to int) bool {
	folder, ok := c.FolderAt(path)
	if !ok || from < 0 || from >= len(folder.requests) {
		return false
	}
	mapping, err := tree.AffectedIndexes(from, to, len(folder.requests))
	if err != nil {
		return false
	}
	folder.requests = tree.ApplyIndexMap(folder.requests, mapping)
	c.touch()
	return true
}

// MoveFolder relocates the child collection at position from within the
// folder at path to position to.
func (c *Collection) MoveFolder(path tree.Path, from, to int) bool {
	folder, ok := c.FolderAt(path)
	if !ok || from < 0 || from >= len(folder.folders) {
		return false
	}
	mapping, err := tree.AffectedIndexes(from, to, len(folder.folders))
	if err != nil {
		return false
	}
	folder.folders = tree.ApplyIndexMap(folder.folders, mapping)
	c.touch()
	return true
}

// RemoveRequestAt deletes the request at the given folder path and index.
func (c *Collection) RemoveRequestAt(path tree.Path, index int) bool {
	folder, ok := c.FolderAt(path)
	if !ok || index < 0 || index >= len(folder.requests) {
		return false
	}
	folder.requests = append(folder.requests[:index], folder.requests[index+1:]...)
	c.touch()
	return true
}

// RemoveFolderAt deletes the child collection addressed by path. The root
// collection cannot be removed this way.
func (c *Collection) RemoveFolderAt(path tree.Path) bool {
	if path.IsRoot() {
		return false
	}
	parent, ok := c.FolderAt(path.Parent())
	if !ok {
		return false
	}
	idx, ok := path.Last().Idx()
	if !ok || idx < 0 || idx >= len(parent.folders) {
		return false
	}
	parent.folders = append(parent.folders[:idx], parent.folders[idx+1:]...)
	c.touch()
	return true
}

// FindFolder searches for a child collection by ID recursively.
func (c *Collection) FindFolder(id string) *Collection {
	for _, f := range c.folders {
		if f.id == id {
			return f
		}
		if found := f.FindFolder(id); found != nil {
			return found
		}
	}
	return nil
}

// FindRequest searches for a request by ID in the entire tree.
func (c *Collection) FindRequest(id string) (*Request, bool) {
	for _, r := range c.requests {
		if r.ID() == id {
			return r, true
		}
	}
	for _, f := range c.folders {
		if req, ok := f.FindRequest(id); ok {
			return req, true
		}
	}
	return nil, false
}

// RequestCount returns the number of requests in the entire tree.
func (c *Collection) RequestCount() int {
	count := len(c.requests)
	for _, f := range c.folders {
		count += f.RequestCount()
	}
	return count
}

// Clone creates a deep copy of the collection.
func (c *Collection) Clone() *Collection {
	clone := NewCollection(c.name)
	clone.description = c.description
	clone.auth = c.auth
	clone.headers = append([]Header(nil), c.headers...)
	for _, f := range c.folders {
		clone.folders = append(clone.folders, f.Clone())
	}
	for _, r := range c.requests {
		clone.requests = append(clone.requests, r.Clone())
	}
	return clone
}
