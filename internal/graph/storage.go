package graph

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/surrealdb/surrealdb.go"
)

type Storage struct {
	db        *surrealdb.DB
	namespace string
	database  string
}

type StorageConfig struct {
	URL       string
	Namespace string
	Database  string
	Username  string
	Password  string
}

type EdgeType string

const (
	EdgeTypeCalls EdgeType = "calls"
)

// CodeNode is a function definition published from one file's call graph.
type CodeNode struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Language  string `json:"language"`
	FilePath  string `json:"file_path"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	Signature string `json:"signature,omitempty"`
}

// CodeEdge aggregates the call sites from one function to one callee.
// Unresolved callees point at an external:: id with no node behind it.
type CodeEdge struct {
	ID       string   `json:"id"`
	FromID   string   `json:"from_id"`
	ToID     string   `json:"to_id"`
	EdgeType EdgeType `json:"edge_type"`
	FilePath string   `json:"file_path"`
	Resolved bool     `json:"resolved"`
	Weight   float32  `json:"weight"`
}

// FormatEdgeID builds the edge identifier "FromID->ToID:EdgeType".
func FormatEdgeID(fromID, toID string, edgeType EdgeType) string {
	return fmt.Sprintf("%s->%s:%s", fromID, toID, edgeType)
}

// NodeID identifies a function by file and name. Overloads share an id.
func NodeID(filePath, name string) string {
	return filePath + "::" + name
}

// ExternalID identifies a callee that is not defined in the file.
func ExternalID(callee string) string {
	return "external::" + callee
}

func NewStorage(cfg StorageConfig) (*Storage, error) {
	ctx := context.Background()
	db, err := surrealdb.New(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	// Sign in
	if cfg.Username != "" {
		_, err = db.SignIn(ctx, map[string]interface{}{
			"user": cfg.Username,
			"pass": cfg.Password,
		})
		if err != nil {
			db.Close(ctx)
			return nil, fmt.Errorf("failed to sign in: %w", err)
		}
	}

	// Use namespace and database
	err = db.Use(ctx, cfg.Namespace, cfg.Database)
	if err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to use namespace/database: %w", err)
	}

	return &Storage{
		db:        db,
		namespace: cfg.Namespace,
		database:  cfg.Database,
	}, nil
}

func (s *Storage) Close() error {
	return s.db.Close(context.Background())
}

// ReplaceFile swaps every node and edge of a file for the given ones in a
// single transaction. Empty slices delete the file from the graph.
func (s *Storage) ReplaceFile(ctx context.Context, filePath string, nodes []*CodeNode, edges []*CodeEdge) error {
	query := `
		BEGIN TRANSACTION;
		DELETE FROM edges WHERE file_path = $path;
		DELETE FROM nodes WHERE file_path = $path;
		FOR $node IN $nodes { CREATE nodes CONTENT $node; };
		FOR $edge IN $edges { CREATE edges CONTENT $edge; };
		COMMIT TRANSACTION;
	`
	if nodes == nil {
		nodes = []*CodeNode{}
	}
	if edges == nil {
		edges = []*CodeEdge{}
	}
	_, err := surrealdb.Query[any](ctx, s.db, query, map[string]any{
		"path":  filePath,
		"nodes": nodes,
		"edges": edges,
	})
	if err != nil {
		return fmt.Errorf("replace %s: %w", filePath, err)
	}
	return nil
}

func (s *Storage) FindByName(ctx context.Context, name string) ([]CodeNode, error) {
	return queryList[CodeNode](ctx, s, `SELECT * FROM nodes WHERE name CONTAINS $name`, map[string]any{
		"name": name,
	})
}

func (s *Storage) GetNodesByFile(ctx context.Context, filePath string) ([]CodeNode, error) {
	return queryList[CodeNode](ctx, s, `SELECT * FROM nodes WHERE file_path = $path`, map[string]any{
		"path": filePath,
	})
}

// Callees returns the outgoing call edges of a function node.
func (s *Storage) Callees(ctx context.Context, nodeID string) ([]CodeEdge, error) {
	return queryList[CodeEdge](ctx, s, `SELECT * FROM edges WHERE from_id = $id AND edge_type = 'calls'`, map[string]any{
		"id": nodeID,
	})
}

// Callers returns the incoming call edges of a function node, or of an
// external id for calls that never resolved.
func (s *Storage) Callers(ctx context.Context, nodeID string) ([]CodeEdge, error) {
	return queryList[CodeEdge](ctx, s, `SELECT * FROM edges WHERE to_id = $id AND edge_type = 'calls'`, map[string]any{
		"id": nodeID,
	})
}

func queryList[T any](ctx context.Context, s *Storage, query string, vars map[string]any) ([]T, error) {
	results, err := surrealdb.Query[[]T](ctx, s.db, query, vars)
	if err != nil {
		return nil, err
	}

	if results == nil || len(*results) == 0 {
		return nil, nil
	}
	return (*results)[0].Result, nil
}

var migrations = []string{
	`DEFINE TABLE nodes SCHEMAFULL`,
	`DEFINE FIELD id ON nodes TYPE string`,
	`DEFINE FIELD name ON nodes TYPE string`,
	`DEFINE FIELD language ON nodes TYPE string`,
	`DEFINE FIELD file_path ON nodes TYPE string`,
	`DEFINE FIELD start_line ON nodes TYPE int`,
	`DEFINE FIELD end_line ON nodes TYPE int`,
	`DEFINE FIELD signature ON nodes TYPE option<string>`,
	`DEFINE INDEX idx_nodes_file ON nodes FIELDS file_path`,
	`DEFINE INDEX idx_nodes_name ON nodes FIELDS name`,

	`DEFINE TABLE edges SCHEMAFULL`,
	`DEFINE FIELD id ON edges TYPE string`,
	`DEFINE FIELD from_id ON edges TYPE string`,
	`DEFINE FIELD to_id ON edges TYPE string`,
	`DEFINE FIELD edge_type ON edges TYPE string`,
	`DEFINE FIELD file_path ON edges TYPE string`,
	`DEFINE FIELD resolved ON edges TYPE bool`,
	`DEFINE FIELD weight ON edges TYPE float DEFAULT 1.0`,
	`DEFINE INDEX idx_edges_from ON edges FIELDS from_id`,
	`DEFINE INDEX idx_edges_to ON edges FIELDS to_id`,
	`DEFINE INDEX idx_edges_file ON edges FIELDS file_path`,
}

func (s *Storage) RunMigrations(ctx context.Context) error {
	for _, m := range migrations {
		if _, err := surrealdb.Query[any](ctx, s.db, m, nil); err != nil {
			if isAlreadyExists(err.Error()) {
				continue
			}
			log.Printf("Warning: migration %q failed: %v", m, err)
		}
	}
	return nil
}

// isAlreadyExists reports whether a migration error only says the
// definition is already in place.
func isAlreadyExists(msg string) bool {
	errStr := strings.ToLower(msg)
	return strings.Contains(errStr, "already defined") ||
		strings.Contains(errStr, "already exists") ||
		strings.Contains(errStr, "duplicate index") ||
		strings.Contains(errStr, "duplicate field")
}
