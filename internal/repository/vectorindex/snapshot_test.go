package vectorindex

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/craftlink/go-backend/internal/domain"
	"github.com/craftlink/go-backend/pkg/e"
)

func snapshotPaths(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	return filepath.Join(dir, "index.vec"), filepath.Join(dir, "index.ids.json")
}

func TestSnapshotRoundtrip(t *testing.T) {
	vecPath, idPath := snapshotPaths(t)

	snap := domain.NewIndexSnapshot(
		"build-1",
		time.Now().UTC().Truncate(time.Second),
		3,
		[][]float32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		[]string{"p1", "p2", "p3"},
	)

	if err := WriteSnapshot(snap, vecPath, idPath); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}

	got, err := ReadSnapshot(vecPath, idPath)
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}

	if got.BuildID != snap.BuildID {
		t.Errorf("build id: got %q, want %q", got.BuildID, snap.BuildID)
	}
	if got.Dim != snap.Dim {
		t.Errorf("dim: got %d, want %d", got.Dim, snap.Dim)
	}
	if len(got.Vectors) != 3 || len(got.ProductIDs) != 3 {
		t.Fatalf("size: got %d vectors / %d ids", len(got.Vectors), len(got.ProductIDs))
	}
	for i := range snap.Vectors {
		for j := range snap.Vectors[i] {
			if got.Vectors[i][j] != snap.Vectors[i][j] {
				t.Errorf("vector[%d][%d]: got %v, want %v", i, j, got.Vectors[i][j], snap.Vectors[i][j])
			}
		}
		if got.ProductIDs[i] != snap.ProductIDs[i] {
			t.Errorf("id[%d]: got %q, want %q", i, got.ProductIDs[i], snap.ProductIDs[i])
		}
	}
}

func TestWriteSnapshotLengthMismatch(t *testing.T) {
	vecPath, idPath := snapshotPaths(t)

	snap := domain.NewIndexSnapshot("b", time.Now(), 2, [][]float32{{1, 2}}, []string{"p1", "p2"})
	if err := WriteSnapshot(snap, vecPath, idPath); err == nil {
		t.Fatal("expected error for vectors/identity length mismatch")
	}

	if _, err := os.Stat(vecPath); !os.IsNotExist(err) {
		t.Error("no artifact should be written on mismatch")
	}
}

func TestReadSnapshotMissingArtifact(t *testing.T) {
	vecPath, idPath := snapshotPaths(t)

	_, err := ReadSnapshot(vecPath, idPath)
	if !errors.Is(err, e.ErrIndexLoad) {
		t.Fatalf("expected ErrIndexLoad, got %v", err)
	}
}

func TestReadSnapshotPairMismatch(t *testing.T) {
	vecPath, idPath := snapshotPaths(t)

	first := domain.NewIndexSnapshot("build-a", time.Now(), 2, [][]float32{{1, 0}}, []string{"p1"})
	if err := WriteSnapshot(first, vecPath, idPath); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}

	// Вторая пара пишется в другое место, подсовываем её identity к первой
	otherVec, otherID := snapshotPaths(t)
	second := domain.NewIndexSnapshot("build-b", time.Now(), 2, [][]float32{{0, 1}}, []string{"p2"})
	if err := WriteSnapshot(second, otherVec, otherID); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}

	_, err := ReadSnapshot(vecPath, otherID)
	if !errors.Is(err, e.ErrIndexLoad) {
		t.Fatalf("expected ErrIndexLoad for mismatched pair, got %v", err)
	}
}

func TestReadSnapshotEmpty(t *testing.T) {
	vecPath, idPath := snapshotPaths(t)

	snap := domain.NewIndexSnapshot("empty", time.Now(), 4, [][]float32{}, []string{})
	if err := WriteSnapshot(snap, vecPath, idPath); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}

	_, err := ReadSnapshot(vecPath, idPath)
	if !errors.Is(err, e.ErrIndexLoad) {
		t.Fatalf("expected ErrIndexLoad for empty snapshot, got %v", err)
	}
}

func TestReadSnapshotCorruptedMagic(t *testing.T) {
	vecPath, idPath := snapshotPaths(t)

	snap := domain.NewIndexSnapshot("b", time.Now(), 2, [][]float32{{1, 0}}, []string{"p1"})
	if err := WriteSnapshot(snap, vecPath, idPath); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}

	data, err := os.ReadFile(vecPath)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	copy(data, []byte("GARBAGE!"))
	if err := os.WriteFile(vecPath, data, 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}

	_, err = ReadSnapshot(vecPath, idPath)
	if !errors.Is(err, e.ErrIndexLoad) {
		t.Fatalf("expected ErrIndexLoad for corrupted magic, got %v", err)
	}
}

func TestWriteSnapshotLeavesNoTempFiles(t *testing.T) {
	vecPath, idPath := snapshotPaths(t)

	snap := domain.NewIndexSnapshot("b", time.Now(), 1, [][]float32{{42}}, []string{"p1"})
	if err := WriteSnapshot(snap, vecPath, idPath); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}

	entries, err := os.ReadDir(filepath.Dir(vecPath))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, entry := range entries {
		if filepath.Ext(entry.Name()) == ".tmp" {
			t.Errorf("temp file left behind: %s", entry.Name())
		}
	}
}
