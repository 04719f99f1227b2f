package layer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileLayer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.raw")
	data := testData(128, []byte("XY"), 100)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	l, err := NewFileLayer(path, Config{ChunkSize: 16, Overlap: 4})
	if err != nil {
		t.Fatalf("NewFileLayer failed: %v", err)
	}
	defer l.Close()

	if l.Size() != 128 {
		t.Errorf("Expected size 128, got %d", l.Size())
	}
	if l.Name() != path {
		t.Errorf("Expected name %q, got %q", path, l.Name())
	}

	matches := collect(t, l.Scan(context.Background(), literalScanner{[]byte("XY")}, nil))
	if len(matches) != 1 || matches[0].Offset != 100 {
		t.Errorf("Expected one match at 100, got %+v", matches)
	}
}

func TestFileLayerMissing(t *testing.T) {
	if _, err := NewFileLayer(filepath.Join(t.TempDir(), "nope.raw"), DefaultConfig()); err == nil {
		t.Error("NewFileLayer must fail for a missing file")
	}
}
