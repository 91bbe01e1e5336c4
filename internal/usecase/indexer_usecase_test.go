package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/craftlink/go-backend/internal/cfg"
	"github.com/craftlink/go-backend/internal/domain"
	"github.com/craftlink/go-backend/internal/repository/vectorindex"
	"github.com/craftlink/go-backend/pkg/e"
	"github.com/craftlink/go-backend/pkg/logger"
)

type fakeEmbeddings struct {
	dim int
	err error
}

func (f *fakeEmbeddings) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return make([]float32, f.dim), nil
}

func indexedProduct(id string, embedding []float32, model string) domain.Product {
	return domain.Product{
		ID:                   id,
		ArtisanID:            "art-1",
		Name:                 "Product " + id,
		Description:          "Description " + id,
		DescriptionEmbedding: embedding,
		EmbeddingModel:       model,
	}
}

func newIndexerFixture(t *testing.T, products []domain.Product, embeddings *fakeEmbeddings) (*IndexerUseCase, cfg.IndexCfg) {
	t.Helper()

	repo := &fakeProductRepo{products: map[string]domain.Product{}}
	for _, p := range products {
		repo.products[p.ID] = p
	}

	dir := t.TempDir()
	indexCfg := cfg.IndexCfg{
		VectorsPath:  filepath.Join(dir, "index.vec"),
		IdentityPath: filepath.Join(dir, "index.ids.json"),
		VectorSize:   3,
	}
	genAICfg := cfg.GenAICfg{EmbeddingModel: "text-embedding-3-small", MaxConcurrent: 2, MaxRetries: 1}

	uc := NewIndexerUC(repo, embeddings, vectorindex.SnapshotStore{}, nil, nil, indexCfg, genAICfg, logger.NewNopLogger())
	return uc, indexCfg
}

func TestBuildIndexReusesCurrentEmbeddings(t *testing.T) {
	products := []domain.Product{
		indexedProduct("0a", []float32{1, 0, 0}, "text-embedding-3-small"),
		indexedProduct("0b", []float32{0, 1, 0}, "text-embedding-3-small"),
		{ID: "0c", ArtisanID: "art-1"}, // без названия и описания: нечего индексировать
	}
	uc, indexCfg := newIndexerFixture(t, products, &fakeEmbeddings{dim: 3})

	res, err := uc.BuildIndex(context.Background(), &BuildIndexReq{})
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}

	if res.Total != 3 || res.Reused != 2 || res.Skipped != 1 || res.Embedded != 0 {
		t.Errorf("counts: total=%d reused=%d skipped=%d embedded=%d", res.Total, res.Reused, res.Skipped, res.Embedded)
	}
	if res.VectorCount != 2 {
		t.Errorf("vector count: got %d, want 2", res.VectorCount)
	}
	if res.BuildID == "" {
		t.Error("build id must be set")
	}

	snap, err := vectorindex.ReadSnapshot(indexCfg.VectorsPath, indexCfg.IdentityPath)
	if err != nil {
		t.Fatalf("written pair must be loadable: %v", err)
	}
	if snap.BuildID != res.BuildID {
		t.Errorf("snapshot build id: got %q, want %q", snap.BuildID, res.BuildID)
	}
	if len(snap.Vectors) != 2 || len(snap.ProductIDs) != 2 {
		t.Fatalf("snapshot size: %d vectors, %d ids", len(snap.Vectors), len(snap.ProductIDs))
	}
	// Порядок перебора каталога стабилен по id
	if snap.ProductIDs[0] != "0a" || snap.ProductIDs[1] != "0b" {
		t.Errorf("identity order: got %v", snap.ProductIDs)
	}
}

func TestBuildIndexStaleModelGoesToEmbedding(t *testing.T) {
	// Эмбеддинг есть, но посчитан устаревшей моделью: переиспользовать нельзя.
	// Провайдер возвращает вектор чужой размерности, пересчёт обязан упасть
	// до записи снапшота.
	products := []domain.Product{
		indexedProduct("0a", []float32{1, 0, 0}, "text-embedding-ada-002"),
	}
	uc, indexCfg := newIndexerFixture(t, products, &fakeEmbeddings{dim: 5})

	_, err := uc.BuildIndex(context.Background(), &BuildIndexReq{})
	if !errors.Is(err, e.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}

	if _, statErr := os.Stat(indexCfg.VectorsPath); !os.IsNotExist(statErr) {
		t.Error("failed build must not leave a vectors artifact")
	}
	if _, statErr := os.Stat(indexCfg.IdentityPath); !os.IsNotExist(statErr) {
		t.Error("failed build must not leave an identity artifact")
	}
}

func TestBuildIndexProviderFailure(t *testing.T) {
	products := []domain.Product{
		indexedProduct("0a", nil, ""),
	}
	providerErr := fmt.Errorf("quota exceeded: %w", e.ErrEmbeddingProvider)
	uc, indexCfg := newIndexerFixture(t, products, &fakeEmbeddings{err: providerErr})

	_, err := uc.BuildIndex(context.Background(), &BuildIndexReq{})
	if !errors.Is(err, e.ErrEmbeddingProvider) {
		t.Fatalf("expected embedding provider error, got %v", err)
	}

	if _, statErr := os.Stat(indexCfg.VectorsPath); !os.IsNotExist(statErr) {
		t.Error("failed build must not leave a vectors artifact")
	}
}

func TestBuildIndexEmptyCatalogWritesNothing(t *testing.T) {
	uc, indexCfg := newIndexerFixture(t, nil, &fakeEmbeddings{dim: 3})

	res, err := uc.BuildIndex(context.Background(), &BuildIndexReq{})
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	if res.Total != 0 || res.VectorCount != 0 {
		t.Errorf("counts: total=%d vectors=%d", res.Total, res.VectorCount)
	}
	if res.BuildID != "" {
		t.Errorf("no-op run must not mint a build id, got %q", res.BuildID)
	}

	if _, statErr := os.Stat(indexCfg.VectorsPath); !os.IsNotExist(statErr) {
		t.Error("no-op run must not write a vectors artifact")
	}
	if _, statErr := os.Stat(indexCfg.IdentityPath); !os.IsNotExist(statErr) {
		t.Error("no-op run must not write an identity artifact")
	}
}

func TestBuildIndexAllSkippedKeepsPreviousPair(t *testing.T) {
	products := []domain.Product{
		{ID: "0a", ArtisanID: "art-1"}, // без названия и описания
	}
	uc, indexCfg := newIndexerFixture(t, products, &fakeEmbeddings{dim: 3})

	previous := domain.NewIndexSnapshot("earlier-build", time.Now().UTC(), 3,
		[][]float32{{1, 0, 0}}, []string{"kept"})
	if err := (vectorindex.SnapshotStore{}).WriteSnapshot(previous, indexCfg.VectorsPath, indexCfg.IdentityPath); err != nil {
		t.Fatalf("seed previous snapshot: %v", err)
	}

	res, err := uc.BuildIndex(context.Background(), &BuildIndexReq{})
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	if res.Skipped != 1 || res.VectorCount != 0 {
		t.Errorf("counts: skipped=%d vectors=%d", res.Skipped, res.VectorCount)
	}

	snap, err := vectorindex.ReadSnapshot(indexCfg.VectorsPath, indexCfg.IdentityPath)
	if err != nil {
		t.Fatalf("previous pair must survive a no-op run: %v", err)
	}
	if snap.BuildID != "earlier-build" {
		t.Errorf("previous pair overwritten: build id %q", snap.BuildID)
	}
}

func TestAssembleRowsKeepsCatalogOrder(t *testing.T) {
	// Чередование переиспользованных и свежих векторов: порядок строк
	// снапшота обязан совпадать с порядком перебора каталога.
	products := []domain.Product{
		indexedProduct("0a", []float32{1, 0, 0}, "text-embedding-3-small"),
		indexedProduct("0b", nil, ""),
		indexedProduct("0c", []float32{0, 1, 0}, "text-embedding-3-small"),
		indexedProduct("0d", nil, ""),
		{ID: "0e", ArtisanID: "art-1"}, // без текста: в снапшот не попадает
	}
	uc, _ := newIndexerFixture(t, products, &fakeEmbeddings{dim: 3})

	fresh := map[string][]float32{
		"0b": {0, 0, 1},
		"0d": {1, 1, 0},
	}

	vectors, ids := uc.assembleRows(products, false, fresh)

	wantIDs := []string{"0a", "0b", "0c", "0d"}
	if len(ids) != len(wantIDs) {
		t.Fatalf("got %d rows, want %d", len(ids), len(wantIDs))
	}
	for i, id := range wantIDs {
		if ids[i] != id {
			t.Errorf("row %d: got %q, want %q", i, ids[i], id)
		}
	}
	if vectors[1][2] != 1 || vectors[3][0] != 1 {
		t.Errorf("fresh vectors misplaced: %v", vectors)
	}
	if vectors[0][0] != 1 || vectors[2][1] != 1 {
		t.Errorf("reused vectors misplaced: %v", vectors)
	}
}

func TestListAllPaginatesWholeCatalog(t *testing.T) {
	products := make([]domain.Product, 0, listPageSize*2+3)
	for i := 0; i < listPageSize*2+3; i++ {
		products = append(products, indexedProduct(fmt.Sprintf("%04d", i), []float32{1, 0, 0}, "text-embedding-3-small"))
	}
	uc, _ := newIndexerFixture(t, products, &fakeEmbeddings{dim: 3})

	all, err := uc.listAll(context.Background())
	if err != nil {
		t.Fatalf("listAll: %v", err)
	}
	if len(all) != len(products) {
		t.Fatalf("got %d products, want %d", len(all), len(products))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].ID >= all[i].ID {
			t.Fatalf("catalog order broken at %d: %s >= %s", i, all[i-1].ID, all[i].ID)
		}
	}
}
