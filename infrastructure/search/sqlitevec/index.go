// Package sqlitevec provides semantic search over document chunks using a
// local SQLite database with the sqlite-vec extension.
package sqlitevec

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"stratgraph/application/ports"
	apperrors "stratgraph/pkg/errors"
)

func init() {
	sqlite_vec.Auto() // registers the vec0 virtual table with go-sqlite3
}

// Index implements ports.Retriever and ports.DocumentIndexer. Chunk text and
// metadata live in a plain table; vectors live in a vec0 virtual table keyed
// by the chunk rowid. The vec0 table is created lazily on first insert
// because its declared dimension must match the embedding model.
type Index struct {
	db       *sql.DB
	embedder ports.Embedder
	logger   *zap.Logger

	mu     sync.Mutex
	vecDim int // dimension of the vec0 table (0 = not yet created), guarded by mu
}

// Open opens (creating if needed) the chunk index at the given path
func Open(path string, embedder ports.Embedder, logger *zap.Logger) (*Index, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open vector db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to vector db: %w", err)
	}

	var vecVersion string
	if err := db.QueryRow(`SELECT vec_version()`).Scan(&vecVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite-vec unavailable: %w", err)
	}

	idx := &Index{db: db, embedder: embedder, logger: logger}
	if err := idx.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("Opened chunk index",
		zap.String("path", path),
		zap.String("vecVersion", vecVersion),
		zap.Int("dimension", idx.vecDim))
	return idx, nil
}

// Close closes the underlying database
func (i *Index) Close() error {
	return i.db.Close()
}

func (i *Index) migrate() error {
	_, err := i.db.Exec(`
		CREATE TABLE IF NOT EXISTS chunks (
			rowid          INTEGER PRIMARY KEY,
			document_id    TEXT NOT NULL,
			document_title TEXT NOT NULL DEFAULT '',
			chunk_index    INTEGER NOT NULL,
			text           TEXT NOT NULL,
			created_at     TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_chunks_document ON chunks(document_id);
	`)
	if err != nil {
		return fmt.Errorf("failed to migrate chunk table: %w", err)
	}

	// Recover the vec0 dimension from a previous run, if the table exists.
	var decl string
	err = i.db.QueryRow(`SELECT sql FROM sqlite_master WHERE name = 'chunk_vec'`).Scan(&decl)
	switch {
	case err == sql.ErrNoRows:
		return nil
	case err != nil:
		return fmt.Errorf("failed to inspect vec table: %w", err)
	}
	if pos := strings.Index(decl, "float["); pos >= 0 {
		if _, scanErr := fmt.Sscanf(decl[pos:], "float[%d]", &i.vecDim); scanErr != nil {
			i.logger.Warn("Could not recover vec table dimension", zap.String("sql", decl))
		}
	}
	return nil
}

// ensureVecTable creates the vec0 virtual table for the given embedding
// dimension. rowid keys the vectors to the chunks table.
func (i *Index) ensureVecTable(dim int) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.vecDim == dim {
		return nil
	}
	if i.vecDim != 0 {
		return fmt.Errorf("embedding dimension %d does not match index dimension %d", dim, i.vecDim)
	}

	query := fmt.Sprintf(`CREATE VIRTUAL TABLE IF NOT EXISTS chunk_vec USING vec0(embedding float[%d])`, dim)
	if _, err := i.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create chunk_vec(float[%d]): %w", dim, err)
	}
	i.vecDim = dim
	return nil
}

// IndexChunks embeds and stores the given chunks, replacing any previous
// chunks of the same documents
func (i *Index) IndexChunks(ctx context.Context, chunks []ports.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	type embedded struct {
		chunk  ports.DocumentChunk
		vector []byte
	}
	rows := make([]embedded, 0, len(chunks))
	for _, chunk := range chunks {
		vec, err := i.embedder.Embed(ctx, chunk.Text)
		if err != nil {
			return apperrors.Wrapf(err, "failed to embed chunk %d of document %s", chunk.ChunkIndex, chunk.DocumentID)
		}
		if err := i.ensureVecTable(len(vec)); err != nil {
			return err
		}
		serialized, err := sqlite_vec.SerializeFloat32(vec)
		if err != nil {
			return fmt.Errorf("failed to serialize embedding: %w", err)
		}
		rows = append(rows, embedded{chunk: chunk, vector: serialized})
	}

	seen := make(map[string]bool)
	docIDs := make([]string, 0, 1)
	for _, chunk := range chunks {
		if !seen[chunk.DocumentID] {
			seen[chunk.DocumentID] = true
			docIDs = append(docIDs, chunk.DocumentID)
		}
	}

	tx, err := i.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewDatabaseError("index chunks", err)
	}
	defer tx.Rollback()

	for _, docID := range docIDs {
		if err := deleteDocumentTx(tx, docID); err != nil {
			return err
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for _, row := range rows {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO chunks (document_id, document_title, chunk_index, text, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			row.chunk.DocumentID, row.chunk.DocumentTitle, row.chunk.ChunkIndex, row.chunk.Text, now)
		if err != nil {
			return apperrors.NewDatabaseError("insert chunk", err)
		}
		rowid, err := result.LastInsertId()
		if err != nil {
			return apperrors.NewDatabaseError("insert chunk", err)
		}
		// vec0 does not reliably support INSERT OR REPLACE; rows for these
		// documents were already deleted above.
		if _, err := tx.ExecContext(ctx, `INSERT INTO chunk_vec(rowid, embedding) VALUES (?, ?)`, rowid, row.vector); err != nil {
			return apperrors.NewDatabaseError("insert chunk vector", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewDatabaseError("index chunks", err)
	}

	i.logger.Info("Indexed document chunks",
		zap.Int("chunks", len(rows)),
		zap.Strings("documentIDs", docIDs))
	return nil
}

// DeleteDocument removes every chunk of a document from the index
func (i *Index) DeleteDocument(ctx context.Context, documentID string) error {
	tx, err := i.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewDatabaseError("delete document chunks", err)
	}
	defer tx.Rollback()

	if err := deleteDocumentTx(tx, documentID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return apperrors.NewDatabaseError("delete document chunks", err)
	}
	return nil
}

func deleteDocumentTx(tx *sql.Tx, documentID string) error {
	if _, err := tx.Exec(`
		DELETE FROM chunk_vec WHERE rowid IN (SELECT rowid FROM chunks WHERE document_id = ?)`,
		documentID); err != nil {
		// The vec table does not exist until the first insert.
		if _, chunkErr := tx.Exec(`DELETE FROM chunks WHERE document_id = ?`, documentID); chunkErr != nil {
			return apperrors.NewDatabaseError("delete document chunks", chunkErr)
		}
		return nil
	}
	if _, err := tx.Exec(`DELETE FROM chunks WHERE document_id = ?`, documentID); err != nil {
		return apperrors.NewDatabaseError("delete document chunks", err)
	}
	return nil
}

// Search returns up to limit passages most similar to the query text.
// OpenAI embeddings are unit length, so L2 distance orders the same way as
// cosine distance and similarity falls out as 1 - distance/2.
func (i *Index) Search(ctx context.Context, query string, limit int) ([]ports.Passage, error) {
	i.mu.Lock()
	dim := i.vecDim
	i.mu.Unlock()
	if dim == 0 {
		return nil, nil // nothing indexed yet
	}
	if limit <= 0 {
		return nil, nil
	}

	vec, err := i.embedder.Embed(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to embed search query")
	}
	serialized, err := sqlite_vec.SerializeFloat32(vec)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize query embedding: %w", err)
	}

	rows, err := i.db.QueryContext(ctx, `
		SELECT c.document_id, c.document_title, c.chunk_index, c.text,
		       vec_distance_L2(v.embedding, ?) AS distance
		FROM chunk_vec v
		JOIN chunks c ON c.rowid = v.rowid
		ORDER BY distance
		LIMIT ?`,
		serialized, limit)
	if err != nil {
		return nil, apperrors.NewDatabaseError("search chunks", err)
	}
	defer rows.Close()

	var passages []ports.Passage
	for rows.Next() {
		var p ports.Passage
		var distance float64
		if err := rows.Scan(&p.DocumentID, &p.DocumentTitle, &p.ChunkIndex, &p.Text, &distance); err != nil {
			return nil, apperrors.NewDatabaseError("search chunks", err)
		}
		p.Score = 1.0 - distance/2.0
		passages = append(passages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseError("search chunks", err)
	}
	return passages, nil
}
