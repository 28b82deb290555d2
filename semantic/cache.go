package semantic

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"

	_ "modernc.org/sqlite"

	"github.com/ezrec/lpu/isa"
)

// Cache is an Adapter that memoizes the results of another Adapter in
// a sqlite database.
type Cache struct {
	Adapter Adapter // Adapter consulted on a miss.
	Verbose bool    // If set, logs hits and misses.

	db *sql.DB
}

const cacheSchema = `CREATE TABLE IF NOT EXISTS results (
	key TEXT PRIMARY KEY,
	kind INTEGER NOT NULL,
	number REAL NOT NULL DEFAULT 0,
	text TEXT NOT NULL DEFAULT ''
)`

// OpenCache opens, and creates if needed, a result cache at path.
func OpenCache(path string, adapter Adapter) (cache *Cache, err error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return
	}

	err = db.Ping()
	if err == nil {
		_, err = db.Exec(cacheSchema)
	}
	if err != nil {
		db.Close()
		return
	}

	cache = &Cache{
		Adapter: adapter,
		db:      db,
	}
	return
}

// Close closes the database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// cacheKey is the canonical form of a request.
type cacheKey struct {
	Operation uint8      `json:"operation"`
	Prompt    string     `json:"prompt"`
	Messages  [][]string `json:"messages"`
	Operands  []string   `json:"operands"`
	Strategy  int        `json:"strategy"`
	Labels    []string   `json:"labels"`
}

// Key returns the SHA-256 of the canonical request, in hex.
func Key(req Request) string {
	key := cacheKey{
		Operation: uint8(req.Operation),
		Prompt:    req.Prompt,
		Operands:  req.Operands,
		Strategy:  int(req.Strategy),
		Labels:    req.Labels,
	}
	for _, msg := range req.Messages {
		key.Messages = append(key.Messages, []string{msg.Role.String(), msg.Content})
	}

	data, err := json.Marshal(&key)
	if err != nil {
		panic(err)
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Evaluate implements Adapter.
func (c *Cache) Evaluate(ctx context.Context, req Request) (value isa.Value, err error) {
	key := Key(req)

	var kind int
	var number float64
	var text string
	err = c.db.QueryRowContext(ctx, `SELECT kind, number, text FROM results WHERE key = ?`, key).Scan(&kind, &number, &text)
	switch {
	case err == nil:
		switch isa.Kind(kind) {
		case isa.KIND_NUMBER:
			value = isa.Number(number)
		case isa.KIND_TEXT:
			value = isa.Text(text)
		}
		if !value.Empty() {
			if c.Verbose {
				log.Printf("semantic: cache hit %v %v", req.Operation, key)
			}
			return
		}
	case errors.Is(err, sql.ErrNoRows):
	default:
		return
	}

	if c.Verbose {
		log.Printf("semantic: cache miss %v %v", req.Operation, key)
	}

	value, err = c.Adapter.Evaluate(ctx, req)
	if err != nil {
		return
	}

	number, _ = value.Number()
	text, _ = value.Text()
	_, err = c.db.ExecContext(ctx, `INSERT OR REPLACE INTO results (key, kind, number, text) VALUES (?, ?, ?, ?)`,
		key, int(value.Kind()), number, text)
	if err != nil {
		value = isa.Value{}
	}
	return
}
