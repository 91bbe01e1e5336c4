package vectorindex

import (
	"errors"
	"testing"
	"time"

	"github.com/craftlink/go-backend/internal/domain"
	"github.com/craftlink/go-backend/pkg/e"
	"github.com/craftlink/go-backend/pkg/logger"
)

func testIndex(t *testing.T, vectors [][]float32, ids []string) *FlatIndex {
	t.Helper()
	dim := 0
	if len(vectors) > 0 {
		dim = len(vectors[0])
	}
	snap := domain.NewIndexSnapshot("test-build", time.Now(), dim, vectors, ids)
	return NewFlatIndexFromSnapshot(snap, logger.NewNopLogger())
}

func TestSearchNearestNeighbor(t *testing.T) {
	idx := testIndex(t,
		[][]float32{{1, 0}, {1, 0.1}, {5, 5}},
		[]string{"a", "b", "c"},
	)

	got, err := idx.Search([]float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 neighbors, got %d", len(got))
	}
	if got[0].ProductID != "a" {
		t.Errorf("nearest: got %q, want %q", got[0].ProductID, "a")
	}
	if got[1].ProductID != "b" {
		t.Errorf("second: got %q, want %q", got[1].ProductID, "b")
	}
	if got[0].Distance > got[1].Distance {
		t.Errorf("distances not ascending: %v then %v", got[0].Distance, got[1].Distance)
	}
}

func TestSearchKExceedsSize(t *testing.T) {
	idx := testIndex(t, [][]float32{{1}, {2}}, []string{"a", "b"})

	got, err := idx.Search([]float32{0}, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected all 2 rows, got %d", len(got))
	}
}

func TestSearchDimensionMismatch(t *testing.T) {
	idx := testIndex(t, [][]float32{{1, 2, 3}}, []string{"a"})

	_, err := idx.Search([]float32{1, 2}, 1)
	if !errors.Is(err, e.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestSearchTieBreakByRowOrder(t *testing.T) {
	// Две строки на одинаковой дистанции от запроса
	idx := testIndex(t,
		[][]float32{{1, 0}, {-1, 0}, {0, 0}},
		[]string{"first", "second", "origin"},
	)

	got, err := idx.Search([]float32{0, 0}, 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if got[0].ProductID != "origin" {
		t.Errorf("nearest: got %q, want origin", got[0].ProductID)
	}
	// Равные дистанции в порядке строк индекса
	if got[1].ProductID != "first" || got[2].ProductID != "second" {
		t.Errorf("tie-break order: got %q, %q", got[1].ProductID, got[2].ProductID)
	}
}

func TestSearchUnloadedIndex(t *testing.T) {
	idx := &FlatIndex{logger: logger.NewNopLogger()}

	got, err := idx.Search([]float32{1}, 5)
	if err != nil {
		t.Fatalf("expected empty result, got error %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result, got %d neighbors", len(got))
	}
}

func TestSearchZeroK(t *testing.T) {
	idx := testIndex(t, [][]float32{{1}}, []string{"a"})

	got, err := idx.Search([]float32{1}, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result for k=0, got %d", len(got))
	}
}

func TestSearchSkipsRowsWithoutIdentity(t *testing.T) {
	// Карта идентичности короче списка векторов — повреждённый снапшот
	idx := testIndex(t, [][]float32{{1}, {2}}, []string{"a"})

	got, err := idx.Search([]float32{2}, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, n := range got {
		if n.ProductID == "" {
			t.Error("neighbor without identity returned")
		}
	}
	if len(got) != 1 {
		t.Errorf("expected 1 mapped neighbor, got %d", len(got))
	}
}

func TestLoadFlatIndexFromPair(t *testing.T) {
	vecPath, idPath := snapshotPaths(t)

	snap := domain.NewIndexSnapshot("build-42", time.Now(), 2, [][]float32{{1, 0}, {0, 1}}, []string{"p1", "p2"})
	if err := WriteSnapshot(snap, vecPath, idPath); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}

	idx, err := LoadFlatIndex(vecPath, idPath, logger.NewNopLogger())
	if err != nil {
		t.Fatalf("LoadFlatIndex: %v", err)
	}
	if idx.BuildID() != "build-42" {
		t.Errorf("build id: got %q", idx.BuildID())
	}
	if idx.Size() != 2 || idx.Dim() != 2 {
		t.Errorf("size/dim: got %d/%d", idx.Size(), idx.Dim())
	}
}
