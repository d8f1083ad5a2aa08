package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Eliptic23/borja/internal/core"
	"github.com/Eliptic23/borja/internal/tree"
)

// Store is the team-workspace collection store backed by SQLite. Nodes
// carry stable identifiers rather than positions; requests are addressed
// as "<collectionID>/<localIndex>", the local index living in a sort_order
// column.
type Store struct {
	mu     sync.RWMutex
	db     *sql.DB
	closed bool
}

// ErrClosed is returned by every operation after Close.
var ErrClosed = errors.New("sqlite: store closed")

// New creates a new SQLite-backed team store.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return store, nil
}

// NewInMemory creates an in-memory store (useful for testing).
func NewInMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return store, nil
}

func (s *Store) initialize() error {
	schema := `
		CREATE TABLE IF NOT EXISTS team_collections (
			id TEXT PRIMARY KEY,
			parent_id TEXT,
			sort_order INTEGER NOT NULL,
			name TEXT NOT NULL,
			description TEXT,
			auth TEXT,
			headers TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS team_requests (
			collection_id TEXT NOT NULL,
			sort_order INTEGER NOT NULL,
			name TEXT NOT NULL,
			method TEXT NOT NULL,
			url TEXT NOT NULL,
			headers TEXT,
			params TEXT,
			body TEXT,
			auth TEXT,
			pre_script TEXT,
			post_script TEXT,
			PRIMARY KEY (collection_id, sort_order)
		);

		CREATE INDEX IF NOT EXISTS idx_team_collections_parent ON team_collections(parent_id, sort_order);
	`
	_, err := s.db.Exec(schema)
	return err
}

// DB exposes the underlying handle so sibling services sharing the team
// database can run their own migrations against it.
func (s *Store) DB() *sql.DB { return s.db }

// Close releases the database handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// SaveCollection persists a collection tree as a top-level team
// collection, replacing any previous contents under the same ID.
func (s *Store) SaveCollection(ctx context.Context, c *core.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// An existing collection keeps its position; a new one is appended.
	order := -1
	err = tx.QueryRowContext(ctx,
		`SELECT sort_order FROM team_collections WHERE id = ? AND parent_id IS NULL`, c.ID()).Scan(&order)
	if err != nil && err != sql.ErrNoRows {
		return err
	}
	if err := s.deleteSubtree(ctx, tx, c.ID()); err != nil {
		return err
	}
	if order < 0 {
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM team_collections WHERE parent_id IS NULL`).Scan(&order); err != nil {
			return err
		}
	}
	if err := s.insertNode(ctx, tx, c, nil, order); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) insertNode(ctx context.Context, tx *sql.Tx, c *core.Collection, parentID *string, order int) error {
	auth, err := json.Marshal(c.Auth())
	if err != nil {
		return err
	}
	headers, err := json.Marshal(c.Headers())
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO team_collections (id, parent_id, sort_order, name, description, auth, headers, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID(), parentID, order, c.Name(), c.Description(), string(auth), string(headers),
		c.CreatedAt().UTC(), c.UpdatedAt().UTC())
	if err != nil {
		return err
	}

	for i, req := range c.Requests() {
		if err := s.insertRequest(ctx, tx, c.ID(), i, req); err != nil {
			return err
		}
	}
	id := c.ID()
	for i, folder := range c.Folders() {
		if err := s.insertNode(ctx, tx, folder, &id, i); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) insertRequest(ctx context.Context, tx *sql.Tx, collectionID string, order int, req *core.Request) error {
	headers, err := json.Marshal(req.Headers())
	if err != nil {
		return err
	}
	params, err := json.Marshal(req.Params())
	if err != nil {
		return err
	}
	body, err := json.Marshal(req.Body())
	if err != nil {
		return err
	}
	auth, err := json.Marshal(req.Auth())
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO team_requests (collection_id, sort_order, name, method, url, headers, params, body, auth, pre_script, post_script)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		collectionID, order, req.Name(), req.Method(), req.URL(),
		string(headers), string(params), string(body), string(auth),
		req.PreScript(), req.PostScript())
	return err
}

func (s *Store) deleteSubtree(ctx context.Context, tx *sql.Tx, id string) error {
	rows, err := tx.QueryContext(ctx, `SELECT id FROM team_collections WHERE parent_id = ?`, id)
	if err != nil {
		return err
	}
	var children []string
	for rows.Next() {
		var child string
		if err := rows.Scan(&child); err != nil {
			rows.Close()
			return err
		}
		children = append(children, child)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for _, child := range children {
		if err := s.deleteSubtree(ctx, tx, child); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM team_requests WHERE collection_id = ?`, id); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `DELETE FROM team_collections WHERE id = ?`, id)
	return err
}

// GetCollection loads a collection subtree by stable ID.
func (s *Store) GetCollection(ctx context.Context, id string) (*core.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	return s.loadNode(ctx, id)
}

func (s *Store) loadNode(ctx context.Context, id string) (*core.Collection, error) {
	var (
		name, description string
		authJSON          sql.NullString
		headersJSON       sql.NullString
		createdAt         time.Time
		updatedAt         time.Time
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT name, description, auth, headers, created_at, updated_at
		FROM team_collections WHERE id = ?`, id).
		Scan(&name, &description, &authJSON, &headersJSON, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("collection not found: %s", id)
	}
	if err != nil {
		return nil, err
	}

	c := core.NewCollectionWithID(id, name)
	c.SetDescription(description)
	if authJSON.Valid && authJSON.String != "" {
		var auth core.AuthConfig
		if err := json.Unmarshal([]byte(authJSON.String), &auth); err == nil {
			c.SetAuth(auth)
		}
	}
	if headersJSON.Valid && headersJSON.String != "" {
		var headers []core.Header
		if err := json.Unmarshal([]byte(headersJSON.String), &headers); err == nil {
			c.SetHeaders(headers)
		}
	}

	reqs, err := s.loadRequests(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, req := range reqs {
		c.AddRequest(req)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM team_collections WHERE parent_id = ? ORDER BY sort_order`, id)
	if err != nil {
		return nil, err
	}
	var childIDs []string
	for rows.Next() {
		var child string
		if err := rows.Scan(&child); err != nil {
			rows.Close()
			return nil, err
		}
		childIDs = append(childIDs, child)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for _, childID := range childIDs {
		child, err := s.loadNode(ctx, childID)
		if err != nil {
			return nil, err
		}
		c.AddExistingFolder(child)
	}
	c.SetTimestamps(createdAt, updatedAt)
	return c, nil
}

func (s *Store) loadRequests(ctx context.Context, collectionID string) ([]*core.Request, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sort_order, name, method, url, headers, params, body, auth, pre_script, post_script
		FROM team_requests WHERE collection_id = ? ORDER BY sort_order`, collectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []*core.Request
	for rows.Next() {
		var (
			order                                  int
			name, method, url                      string
			headersJSON, paramsJSON, bodyJSON, authJSON sql.NullString
			preScript, postScript                  sql.NullString
		)
		if err := rows.Scan(&order, &name, &method, &url, &headersJSON, &paramsJSON, &bodyJSON, &authJSON, &preScript, &postScript); err != nil {
			return nil, err
		}
		req := core.NewRequestWithID(teamRequestID(collectionID, order), name, method, url)
		if headersJSON.Valid && headersJSON.String != "" {
			var headers []core.Header
			if err := json.Unmarshal([]byte(headersJSON.String), &headers); err == nil {
				req.SetHeaders(headers)
			}
		}
		if paramsJSON.Valid && paramsJSON.String != "" {
			var params []core.Param
			if err := json.Unmarshal([]byte(paramsJSON.String), &params); err == nil {
				req.SetParams(params)
			}
		}
		if bodyJSON.Valid && bodyJSON.String != "" {
			var body core.RequestBody
			if err := json.Unmarshal([]byte(bodyJSON.String), &body); err == nil {
				req.SetBody(body)
			}
		}
		if authJSON.Valid && authJSON.String != "" {
			var auth core.AuthConfig
			if err := json.Unmarshal([]byte(authJSON.String), &auth); err == nil {
				req.SetAuth(auth)
			}
		}
		req.SetPreScript(preScript.String)
		req.SetPostScript(postScript.String)
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

// DeleteCollection removes a collection subtree.
func (s *Store) DeleteCollection(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := s.deleteSubtree(ctx, tx, id); err != nil {
		return err
	}
	return tx.Commit()
}

// GetRequest looks up a request by its "<collectionID>/<index>"
// identifier. A missing request is (nil, nil), not an error - the
// reconciliation sweep treats it as a normal deletion signal.
func (s *Store) GetRequest(ctx context.Context, requestID string) (*core.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	collectionID, order, ok := parseTeamRequestID(requestID)
	if !ok {
		return nil, fmt.Errorf("malformed team request identifier: %q", requestID)
	}

	reqs, err := s.loadRequests(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	for _, req := range reqs {
		if req.ID() == teamRequestID(collectionID, order) {
			return req, nil
		}
	}
	return nil, nil
}

// MoveRequest relocates a request within its collection, rewriting the
// sort_order column of every affected sibling.
func (s *Store) MoveRequest(ctx context.Context, collectionID string, from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	count, err := s.requestCount(ctx, tx, collectionID)
	if err != nil {
		return err
	}
	if from < 0 || from >= count {
		return fmt.Errorf("request position out of range: %d", from)
	}
	mapping, err := tree.AffectedIndexes(from, to, count)
	if err != nil {
		return err
	}
	if err := s.applyOrderMapping(ctx, tx, collectionID, mapping); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteRequest removes a request and closes the positional gap left
// behind, so sibling identifiers stay dense.
func (s *Store) DeleteRequest(ctx context.Context, requestID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	collectionID, order, ok := parseTeamRequestID(requestID)
	if !ok {
		return fmt.Errorf("malformed team request identifier: %q", requestID)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM team_requests WHERE collection_id = ? AND sort_order = ?`, collectionID, order)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("request not found: %s", requestID)
	}

	count, err := s.requestCount(ctx, tx, collectionID)
	if err != nil {
		return err
	}
	mapping, err := tree.AffectedIndexes(order, tree.Removed, count+1)
	if err != nil {
		return err
	}
	if err := s.applyOrderMapping(ctx, tx, collectionID, mapping); err != nil {
		return err
	}
	return tx.Commit()
}

// RequestCount returns the number of requests directly inside a
// collection node.
func (s *Store) RequestCount(ctx context.Context, collectionID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM team_requests WHERE collection_id = ?`, collectionID).Scan(&count)
	return count, err
}

func (s *Store) requestCount(ctx context.Context, tx *sql.Tx, collectionID string) (int, error) {
	var count int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM team_requests WHERE collection_id = ?`, collectionID).Scan(&count)
	return count, err
}

// applyOrderMapping rewrites sort_order per an old→new index mapping. The
// rows move through a negative offset first so the intermediate states
// never collide with the primary key.
func (s *Store) applyOrderMapping(ctx context.Context, tx *sql.Tx, collectionID string, mapping map[int]int) error {
	if len(mapping) == 0 {
		return nil
	}
	for from := range mapping {
		if _, err := tx.ExecContext(ctx,
			`UPDATE team_requests SET sort_order = ? WHERE collection_id = ? AND sort_order = ?`,
			-from-1, collectionID, from); err != nil {
			return err
		}
	}
	for from, to := range mapping {
		if _, err := tx.ExecContext(ctx,
			`UPDATE team_requests SET sort_order = ? WHERE collection_id = ? AND sort_order = ?`,
			to, collectionID, -from-1); err != nil {
			return err
		}
	}
	return nil
}

// ListCollections returns the top-level team collections in order.
func (s *Store) ListCollections(ctx context.Context) ([]*core.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM team_collections WHERE parent_id IS NULL ORDER BY sort_order`)
	if err != nil {
		return nil, err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	colls := make([]*core.Collection, 0, len(ids))
	for _, id := range ids {
		c, err := s.loadNode(ctx, id)
		if err != nil {
			return nil, err
		}
		colls = append(colls, c)
	}
	return colls, nil
}

func teamRequestID(collectionID string, order int) string {
	return fmt.Sprintf("%s/%d", collectionID, order)
}

func parseTeamRequestID(requestID string) (string, int, bool) {
	slash := strings.LastIndex(requestID, "/")
	if slash <= 0 || slash == len(requestID)-1 {
		return "", 0, false
	}
	order, err := strconv.Atoi(requestID[slash+1:])
	if err != nil || order < 0 {
		return "", 0, false
	}
	return requestID[:slash], order, true
}
