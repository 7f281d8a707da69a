// Package cache is a caller-owned transcript cache keyed by source path. An
// entry is fingerprinted with blake3 over the transcript file, so a changed
// file misses without explicit invalidation; Invalidate removes entries by
// hand. The core pipeline stays stateless between runs; the caller decides
// whether to open a cache at all.
package cache

import (
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"lukechampine.com/blake3"
	_ "modernc.org/sqlite"

	"github.com/forPelevin/supercut/internal/types"
)

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS transcripts (
		source TEXT PRIMARY KEY,
		fingerprint TEXT NOT NULL,
		loaded_at DATETIME NOT NULL,
		payload BLOB NOT NULL
	);
	`
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache table: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Get returns the cached transcript for source when its stored fingerprint
// still matches. A stale or missing entry is a miss, not an error.
func (s *Store) Get(source, fingerprint string) (types.Transcript, bool, error) {
	var storedFP string
	var payload []byte
	err := s.db.QueryRow(
		`SELECT fingerprint, payload FROM transcripts WHERE source = ?`, source,
	).Scan(&storedFP, &payload)
	if err == sql.ErrNoRows {
		return types.Transcript{}, false, nil
	}
	if err != nil {
		return types.Transcript{}, false, fmt.Errorf("query cache: %w", err)
	}
	if storedFP != fingerprint {
		slog.Debug("cache entry stale", slog.String("source", source))
		return types.Transcript{}, false, nil
	}

	var tr types.Transcript
	if err := json.Unmarshal(payload, &tr); err != nil {
		return types.Transcript{}, false, fmt.Errorf("decode cached transcript: %w", err)
	}
	slog.Debug("cache hit", slog.String("source", source))
	return tr, true, nil
}

func (s *Store) Put(source, fingerprint string, tr types.Transcript) error {
	payload, err := json.Marshal(tr)
	if err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO transcripts (source, fingerprint, loaded_at, payload) VALUES (?, ?, ?, ?)
		 ON CONFLICT(source) DO UPDATE SET fingerprint = excluded.fingerprint,
		 loaded_at = excluded.loaded_at, payload = excluded.payload`,
		source, fingerprint, time.Now().UTC(), payload,
	)
	if err != nil {
		return fmt.Errorf("store transcript: %w", err)
	}
	return nil
}

// Invalidate removes the entry for source, if any.
func (s *Store) Invalidate(source string) error {
	if _, err := s.db.Exec(`DELETE FROM transcripts WHERE source = ?`, source); err != nil {
		return fmt.Errorf("invalidate %s: %w", source, err)
	}
	return nil
}

// Fingerprint hashes a file's content with blake3.
func Fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := blake3.New(32, nil)
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
