package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/craftlink/go-backend/internal/domain"
	"github.com/craftlink/go-backend/pkg/e"
	"github.com/craftlink/go-backend/pkg/logger"
)

type fakeProductRepo struct {
	products map[string]domain.Product
	getErr   error
	manyErr  error
}

func (f *fakeProductRepo) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	return p, nil
}

func (f *fakeProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.products[id]
	if !ok {
		return nil, e.ErrProductNotFound
	}
	return &p, nil
}

func (f *fakeProductRepo) GetManyByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	if f.manyErr != nil {
		return nil, f.manyErr
	}
	// Нарочно в обратном порядке: порядок выдачи обязан задаваться индексом
	result := make([]domain.Product, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		if p, ok := f.products[ids[i]]; ok {
			result = append(result, p)
		}
	}
	return result, nil
}

func (f *fakeProductRepo) UpdateEmbeddings(ctx context.Context, updates []EmbeddingUpdate) error {
	for _, upd := range updates {
		p := f.products[upd.ProductID]
		p.DescriptionEmbedding = upd.Embedding
		p.EmbeddingModel = upd.Model
		f.products[upd.ProductID] = p
	}
	return nil
}

func (f *fakeProductRepo) ListPage(ctx context.Context, afterID string, limit int) ([]domain.Product, error) {
	ids := make([]string, 0, len(f.products))
	for id := range f.products {
		if id > afterID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	if len(ids) > limit {
		ids = ids[:limit]
	}

	page := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		page = append(page, f.products[id])
	}
	return page, nil
}

// fakeCacheRepo синхронизирует доступ: движок пополняет кэш из фоновой горутины.
type fakeCacheRepo struct {
	mu    sync.Mutex
	cards map[string]ProductCard
	sets  [][]ProductCard
}

func (f *fakeCacheRepo) GetProducts(ctx context.Context, ids []string) (map[string]ProductCard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	result := make(map[string]ProductCard)
	for _, id := range ids {
		if card, ok := f.cards[id]; ok {
			result[id] = card
		}
	}
	return result, nil
}

func (f *fakeCacheRepo) SetProducts(ctx context.Context, products []ProductCard) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sets = append(f.sets, products)
	return nil
}

func (f *fakeCacheRepo) DeleteProducts(ctx context.Context, ids []string) error {
	return nil
}

type fakeIndex struct {
	neighbors []domain.Neighbor
	searchErr error
	buildID   string
}

func (f *fakeIndex) Search(query []float32, k int) ([]domain.Neighbor, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if k > len(f.neighbors) {
		k = len(f.neighbors)
	}
	return f.neighbors[:k], nil
}

func (f *fakeIndex) Size() int { return len(f.neighbors) }

func (f *fakeIndex) BuildID() string { return f.buildID }

// fakeTextGen синхронизирует счётчик: пояснения генерируются конкурентно.
type fakeTextGen struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (f *fakeTextGen) GenerateContent(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("explanation %d", f.calls), nil
}

func catalogProduct(id, artisanID, name string, embedding []float32) domain.Product {
	return domain.Product{
		ID:                   id,
		ArtisanID:            artisanID,
		Name:                 name,
		Description:          name + " description",
		Category:             "pottery",
		Price:                10000,
		DescriptionEmbedding: embedding,
	}
}

func newRecommendFixture(products []domain.Product, neighbors []domain.Neighbor) (*RecommendUseCase, *fakeProductRepo, *fakeIndex, *fakeTextGen) {
	repo := &fakeProductRepo{products: map[string]domain.Product{}}
	for _, p := range products {
		repo.products[p.ID] = p
	}
	index := &fakeIndex{neighbors: neighbors, buildID: "snap-1"}
	textGen := &fakeTextGen{}
	cache := &fakeCacheRepo{cards: map[string]ProductCard{}}
	uc := NewRecommendUC(repo, cache, index, textGen, logger.NewNopLogger(), 2)
	return uc, repo, index, textGen
}

func TestGetSimilarProductsExcludesSeed(t *testing.T) {
	seed := catalogProduct("seed", "art-1", "Seed", []float32{1, 0})
	uc, _, _, _ := newRecommendFixture(
		[]domain.Product{
			seed,
			catalogProduct("p1", "art-2", "One", nil),
			catalogProduct("p2", "art-3", "Two", nil),
		},
		[]domain.Neighbor{
			{ProductID: "seed", Distance: 0},
			{ProductID: "p1", Distance: 0.1},
			{ProductID: "p2", Distance: 0.2},
		},
	)

	res, err := uc.GetSimilarProducts(context.Background(), NewSimilarProductsReq("seed", 2, false))
	if err != nil {
		t.Fatalf("GetSimilarProducts: %v", err)
	}

	if len(res.Products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(res.Products))
	}
	for _, p := range res.Products {
		if p.ID == "seed" {
			t.Error("seed product must never be recommended to itself")
		}
	}
	if res.SnapshotBuildID != "snap-1" {
		t.Errorf("snapshot build id: got %q", res.SnapshotBuildID)
	}
}

func TestGetSimilarProductsPreservesRankOrder(t *testing.T) {
	uc, _, _, _ := newRecommendFixture(
		[]domain.Product{
			catalogProduct("seed", "art-1", "Seed", []float32{1, 0}),
			catalogProduct("p1", "art-2", "One", nil),
			catalogProduct("p2", "art-3", "Two", nil),
			catalogProduct("p3", "art-4", "Three", nil),
		},
		[]domain.Neighbor{
			{ProductID: "p1", Distance: 0.1},
			{ProductID: "p2", Distance: 0.2},
			{ProductID: "p3", Distance: 0.3},
		},
	)

	res, err := uc.GetSimilarProducts(context.Background(), NewSimilarProductsReq("seed", 3, false))
	if err != nil {
		t.Fatalf("GetSimilarProducts: %v", err)
	}

	want := []string{"p1", "p2", "p3"}
	if len(res.Products) != len(want) {
		t.Fatalf("expected %d products, got %d", len(want), len(res.Products))
	}
	for i, id := range want {
		if res.Products[i].ID != id {
			t.Errorf("rank %d: got %q, want %q", i, res.Products[i].ID, id)
		}
	}
}

func TestGetSimilarProductsUnknownSeed(t *testing.T) {
	uc, _, _, _ := newRecommendFixture(nil, nil)

	res, err := uc.GetSimilarProducts(context.Background(), NewSimilarProductsReq("ghost", 5, false))
	if err != nil {
		t.Fatalf("unknown seed must be an empty success, got %v", err)
	}
	if len(res.Products) != 0 {
		t.Errorf("expected empty result, got %d", len(res.Products))
	}
}

func TestGetSimilarProductsSeedWithoutEmbedding(t *testing.T) {
	uc, _, index, _ := newRecommendFixture(
		[]domain.Product{catalogProduct("seed", "art-1", "Seed", nil)},
		[]domain.Neighbor{{ProductID: "p1"}},
	)
	index.searchErr = errors.New("search must not be called")

	res, err := uc.GetSimilarProducts(context.Background(), NewSimilarProductsReq("seed", 5, false))
	if err != nil {
		t.Fatalf("seed without embedding must be an empty success, got %v", err)
	}
	if len(res.Products) != 0 {
		t.Errorf("expected empty result, got %d", len(res.Products))
	}
}

func TestGetSimilarProductsOnlySeedInIndex(t *testing.T) {
	uc, _, _, _ := newRecommendFixture(
		[]domain.Product{catalogProduct("seed", "art-1", "Seed", []float32{1})},
		[]domain.Neighbor{{ProductID: "seed", Distance: 0}},
	)

	res, err := uc.GetSimilarProducts(context.Background(), NewSimilarProductsReq("seed", 5, false))
	if err != nil {
		t.Fatalf("expected empty success, got %v", err)
	}
	if len(res.Products) != 0 {
		t.Errorf("expected empty result, got %d", len(res.Products))
	}
}

func TestGetSimilarProductsSkipsVanishedCandidates(t *testing.T) {
	uc, _, _, _ := newRecommendFixture(
		[]domain.Product{
			catalogProduct("seed", "art-1", "Seed", []float32{1}),
			catalogProduct("p1", "art-2", "One", nil),
			// p2 исчез из каталога после сборки снапшота
		},
		[]domain.Neighbor{
			{ProductID: "p1", Distance: 0.1},
			{ProductID: "p2", Distance: 0.2},
		},
	)

	res, err := uc.GetSimilarProducts(context.Background(), NewSimilarProductsReq("seed", 2, false))
	if err != nil {
		t.Fatalf("GetSimilarProducts: %v", err)
	}
	if len(res.Products) != 1 || res.Products[0].ID != "p1" {
		t.Fatalf("vanished candidate must be skipped, got %+v", res.Products)
	}
}

func TestGetSimilarProductsExplanationFallback(t *testing.T) {
	uc, _, _, textGen := newRecommendFixture(
		[]domain.Product{
			catalogProduct("seed", "art-1", "Seed", []float32{1}),
			catalogProduct("p1", "art-2", "One", nil),
		},
		[]domain.Neighbor{{ProductID: "p1", Distance: 0.1}},
	)
	textGen.err = errors.New("model overloaded")

	res, err := uc.GetSimilarProducts(context.Background(), NewSimilarProductsReq("seed", 1, false))
	if err != nil {
		t.Fatalf("generation failure must degrade, not fail: %v", err)
	}
	if res.Products[0].Explanation != fallbackExplanation {
		t.Errorf("expected fallback explanation, got %q", res.Products[0].Explanation)
	}
}

func TestGetSimilarProductsStoreFailure(t *testing.T) {
	uc, repo, _, _ := newRecommendFixture(
		[]domain.Product{catalogProduct("seed", "art-1", "Seed", []float32{1})},
		nil,
	)
	repo.getErr = errors.New("connection refused")

	_, err := uc.GetSimilarProducts(context.Background(), NewSimilarProductsReq("seed", 5, false))
	if !errors.Is(err, e.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestGetSimilarProductsCandidateFetchFailure(t *testing.T) {
	uc, repo, _, _ := newRecommendFixture(
		[]domain.Product{
			catalogProduct("seed", "art-1", "Seed", []float32{1}),
			catalogProduct("p1", "art-2", "One", nil),
		},
		[]domain.Neighbor{{ProductID: "p1", Distance: 0.1}},
	)
	repo.manyErr = errors.New("connection refused")

	_, err := uc.GetSimilarProducts(context.Background(), NewSimilarProductsReq("seed", 1, false))
	if !errors.Is(err, e.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestGetSimilarProductsFairnessKeepsSet(t *testing.T) {
	uc, _, _, _ := newRecommendFixture(
		[]domain.Product{
			catalogProduct("seed", "art-1", "Seed", []float32{1}),
			catalogProduct("p1", "art-2", "One", nil),
			catalogProduct("p2", "art-2", "Two", nil),
			catalogProduct("p3", "art-3", "Three", nil),
		},
		[]domain.Neighbor{
			{ProductID: "p1", Distance: 0.1},
			{ProductID: "p2", Distance: 0.2},
			{ProductID: "p3", Distance: 0.3},
		},
	)

	res, err := uc.GetSimilarProducts(context.Background(), NewSimilarProductsReq("seed", 3, true))
	if err != nil {
		t.Fatalf("GetSimilarProducts: %v", err)
	}

	got := map[string]bool{}
	for _, p := range res.Products {
		got[p.ID] = true
	}
	for _, id := range []string{"p1", "p2", "p3"} {
		if !got[id] {
			t.Errorf("fairness re-rank dropped %s", id)
		}
	}
	// Разнообразие: второй мастер не должен занимать обе первые позиции
	if res.Products[0].ID == "p1" && res.Products[1].ID == "p2" {
		t.Error("expected round-robin over artisans, got same artisan back-to-back")
	}
}

func TestGetSimilarProductsDefaultAndMaxK(t *testing.T) {
	neighbors := make([]domain.Neighbor, 0, 60)
	products := []domain.Product{catalogProduct("seed", "art-0", "Seed", []float32{1})}
	for i := 0; i < 60; i++ {
		id := fmt.Sprintf("p%d", i)
		neighbors = append(neighbors, domain.Neighbor{ProductID: id, Distance: float32(i)})
		products = append(products, catalogProduct(id, fmt.Sprintf("art-%d", i), id, nil))
	}
	uc, _, _, _ := newRecommendFixture(products, neighbors)

	res, err := uc.GetSimilarProducts(context.Background(), NewSimilarProductsReq("seed", 0, false))
	if err != nil {
		t.Fatalf("GetSimilarProducts: %v", err)
	}
	if len(res.Products) != defaultK {
		t.Errorf("default k: got %d, want %d", len(res.Products), defaultK)
	}

	res, err = uc.GetSimilarProducts(context.Background(), NewSimilarProductsReq("seed", 500, false))
	if err != nil {
		t.Fatalf("GetSimilarProducts: %v", err)
	}
	if len(res.Products) != maxK {
		t.Errorf("max k: got %d, want %d", len(res.Products), maxK)
	}
}
