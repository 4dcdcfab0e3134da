package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"regexp"
	"strconv"
)

// serializeVector converts a float32 slice to a LittleEndian byte slice
// compatible with sqlite-vec BLOB input.
func serializeVector(vec []float32) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, vec); err != nil {
		return nil, fmt.Errorf("failed to serialize vector: %w", err)
	}
	return buf.Bytes(), nil
}

var vecColumnRe = regexp.MustCompile(`float\[(\d+)\]`)

// ValidateVectorDims checks that EMBEDDING_DIMENSIONS matches the vector
// column of chunks_vec. Called at startup so a misconfigured embedder fails
// fast instead of surfacing as an insert error mid-ingest.
func ValidateVectorDims(ctx context.Context, db *sql.DB, dims int) error {
	var ddl string
	err := db.QueryRowContext(ctx, `SELECT sql FROM sqlite_master WHERE name = 'chunks_vec'`).Scan(&ddl)
	if err != nil {
		return fmt.Errorf("failed to read chunks_vec schema: %w", err)
	}

	got, err := vectorDims(ddl)
	if err != nil {
		return err
	}
	if got != dims {
		return fmt.Errorf("chunks_vec stores float[%d] vectors but EMBEDDING_DIMENSIONS is %d; recreate the database or fix the config", got, dims)
	}
	return nil
}

func vectorDims(ddl string) (int, error) {
	m := vecColumnRe.FindStringSubmatch(ddl)
	if m == nil {
		return 0, fmt.Errorf("no vector column found in chunks_vec schema: %s", ddl)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("bad vector dimension in chunks_vec schema: %w", err)
	}
	return n, nil
}
