package sqlite

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestSerializeVector(t *testing.T) {
	vec := []float32{1.5, -2.25, 0}

	data, err := serializeVector(vec)
	if err != nil {
		t.Fatalf("serializeVector() error: %v", err)
	}
	if len(data) != len(vec)*4 {
		t.Fatalf("got %d bytes, want %d", len(data), len(vec)*4)
	}

	for i, want := range vec {
		got := math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
		if got != want {
			t.Errorf("element %d = %v, want %v", i, got, want)
		}
	}
}

func TestVectorDims(t *testing.T) {
	tests := []struct {
		name    string
		ddl     string
		want    int
		wantErr bool
	}{
		{
			name: "migration shape",
			ddl:  "CREATE VIRTUAL TABLE chunks_vec USING vec0(embedding float[1536] distance_metric=cosine)",
			want: 1536,
		},
		{
			name: "other dimension",
			ddl:  "CREATE VIRTUAL TABLE chunks_vec USING vec0(embedding float[768])",
			want: 768,
		},
		{
			name:    "no vector column",
			ddl:     "CREATE TABLE chunks_vec (embedding BLOB)",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := vectorDims(tt.ddl)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("vectorDims() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}
