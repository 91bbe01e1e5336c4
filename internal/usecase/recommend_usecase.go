package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/craftlink/go-backend/internal/domain"
	"github.com/craftlink/go-backend/pkg/e"
	"github.com/craftlink/go-backend/pkg/logger"
)

const (
	defaultK = 5
	maxK     = 50

	// Заглушка, если генерация пояснения не удалась: деградируем, но не падаем.
	fallbackExplanation = "A handcrafted piece similar in style and story to the one you are viewing."

	explanationSystemPrompt = `You are a helpful assistant for an artisan marketplace.
In one short sentence, explain to a buyer why the recommended product is a good match
for the product they are viewing. Be warm and specific, never salesy.`
)

// candidate — кандидат выдачи: карточка товара + дистанция из индекса.
type candidate struct {
	card     ProductCard
	distance float32
}

// RecommendUseCase реализует движок рекомендаций похожих товаров.
type RecommendUseCase struct {
	productRepo   ProductRepository
	cacheRepo     CacheRepository
	index         VectorIndex
	textGen       TextGenInfra
	logger        logger.Logger
	maxConcurrent int
}

func NewRecommendUC(
	productRepo ProductRepository,
	cacheRepo CacheRepository,
	index VectorIndex,
	textGen TextGenInfra,
	logger logger.Logger,
	maxConcurrent int,
) *RecommendUseCase {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}

	return &RecommendUseCase{
		productRepo:   productRepo,
		cacheRepo:     cacheRepo,
		index:         index,
		textGen:       textGen,
		logger:        logger,
		maxConcurrent: maxConcurrent,
	}
}

// GetSimilarProducts возвращает ранжированный список товаров, похожих на заданный.
//
// Неизвестный товар, товар без эмбеддинга и пустой список кандидатов после
// исключения самого себя — валидный пустой результат, а не ошибка.
// Отказ хранилища или индекса оборачивается в e.ErrStoreUnavailable.
func (r *RecommendUseCase) GetSimilarProducts(ctx context.Context, req *SimilarProductsReq) (*SimilarProductsRes, error) {
	const op = "RecommendUseCase.GetSimilarProducts"

	k := req.K
	if k <= 0 {
		k = defaultK
	}
	if k > maxK {
		k = maxK
	}

	buildID := r.index.BuildID()

	// 1. Разрешение seed-товара
	seed, err := r.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, e.ErrProductNotFound) {
			r.logger.Debugf("recommend: seed product %s not found, empty result (snapshot=%s)", req.ProductID, buildID)
			return NewSimilarProductsRes([]RecommendedProduct{}, buildID), nil
		}
		r.logger.Errorf(err, "recommend: seed lookup failed for %s", req.ProductID)
		return nil, storeUnavailable(op, err)
	}

	// 2. Эмбеддинг seed-товара: не проиндексирован — нет рекомендаций
	if len(seed.DescriptionEmbedding) == 0 {
		r.logger.Debugf("recommend: seed product %s has no embedding, empty result (snapshot=%s)", seed.ID, buildID)
		return NewSimilarProductsRes([]RecommendedProduct{}, buildID), nil
	}

	// 3. Поиск соседей с перевыборкой на единицу: seed может попасть
	// в собственную выдачу при точном дубликате эмбеддинга.
	neighbors, err := r.index.Search(seed.DescriptionEmbedding, k+1)
	if err != nil {
		r.logger.Errorf(err, "recommend: index search failed for %s", seed.ID)
		return nil, storeUnavailable(op, err)
	}
	r.logger.Debugf("recommend: index returned %d neighbors for %s (snapshot=%s)", len(neighbors), seed.ID, buildID)

	// 4. Исключение самого себя и усечение до запрошенного k
	filtered := neighbors[:0:0]
	for _, n := range neighbors {
		if n.ProductID == seed.ID {
			continue
		}
		filtered = append(filtered, n)
	}
	if len(filtered) > k {
		filtered = filtered[:k]
	}

	// 5. Пустой список кандидатов — валидный пустой результат
	if len(filtered) == 0 {
		r.logger.Debugf("recommend: no candidates besides seed %s, empty result", seed.ID)
		return NewSimilarProductsRes([]RecommendedProduct{}, buildID), nil
	}

	// 6. Обогащение карточками в порядке ранжирования индекса
	candidates, err := r.enrichCandidates(ctx, filtered)
	if err != nil {
		return nil, storeUnavailable(op, err)
	}
	if len(candidates) == 0 {
		return NewSimilarProductsRes([]RecommendedProduct{}, buildID), nil
	}

	// 7. Fairness-переранжирование: только перестановка, состав не меняется
	if req.Fairness {
		candidates = rerankByArtisanDiversity(candidates)
		r.logger.Debugf("recommend: fairness re-rank applied for %s", seed.ID)
	}

	// 8. Пояснения: отказ генерации деградирует до заглушки
	products := r.explainCandidates(ctx, seed.Name, candidates)

	r.logger.Debugf("recommend: returning %d products for %s (snapshot=%s)", len(products), seed.ID, buildID)
	return NewSimilarProductsRes(products, buildID), nil
}

// enrichCandidates загружает карточки кандидатов сначала из кэша, затем из
// хранилища, и собирает их строго в порядке дистанций из индекса.
// Кандидаты, исчезнувшие из каталога после сборки снапшота, молча пропускаются.
func (r *RecommendUseCase) enrichCandidates(ctx context.Context, filtered []domain.Neighbor) ([]candidate, error) {
	ids := make([]string, 0, len(filtered))
	for _, n := range filtered {
		ids = append(ids, n.ProductID)
	}

	cached, err := r.cacheRepo.GetProducts(ctx, ids)
	if err != nil {
		// Отказ кэша не фатален: все кандидаты уходят в хранилище
		cached = map[string]ProductCard{}
	}

	missing := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := cached[id]; !ok {
			missing = append(missing, id)
		}
	}

	fromStore := make(map[string]ProductCard, len(missing))
	if len(missing) > 0 {
		products, err := r.productRepo.GetManyByIDs(ctx, missing)
		if err != nil {
			r.logger.Errorf(err, "recommend: candidate batch fetch failed")
			return nil, err
		}

		cards := make([]ProductCard, 0, len(products))
		for _, p := range products {
			card := ProductCard{
				ID:        p.ID,
				ArtisanID: p.ArtisanID,
				Name:      p.Name,
				Category:  p.Category,
				ImageURL:  p.ImageURL,
			}
			fromStore[p.ID] = card
			cards = append(cards, card)
		}

		// Фоновое пополнение кэша
		go func() {
			bgCtx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
			defer cancel()

			if err := r.cacheRepo.SetProducts(bgCtx, cards); err != nil {
				r.logger.Warnf("recommend: background cache fill failed: %v", err)
			}
		}()
	}

	// Порядок кандидатов задаётся выдачей индекса, а не порядком ответов хранилищ
	candidates := make([]candidate, 0, len(filtered))
	for _, n := range filtered {
		if card, ok := cached[n.ProductID]; ok {
			candidates = append(candidates, candidate{card: card, distance: n.Distance})
			continue
		}
		if card, ok := fromStore[n.ProductID]; ok {
			candidates = append(candidates, candidate{card: card, distance: n.Distance})
			continue
		}
		r.logger.Debugf("recommend: candidate %s no longer in catalog, skipping", n.ProductID)
	}

	return candidates, nil
}

// explainCandidates генерирует пояснение для каждого кандидата с ограничением
// конкурентности; порядок кандидатов сохраняется.
func (r *RecommendUseCase) explainCandidates(ctx context.Context, seedName string, candidates []candidate) []RecommendedProduct {
	products := make([]RecommendedProduct, len(candidates))
	sem := make(chan struct{}, r.maxConcurrent)

	var wg sync.WaitGroup
	for i, c := range candidates {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			userPrompt := fmt.Sprintf(
				"The buyer is viewing %q. The recommended product is %q in the %q category.",
				seedName, c.card.Name, c.card.Category,
			)

			explanation, err := r.textGen.GenerateContent(ctx, explanationSystemPrompt, userPrompt)
			if err != nil {
				r.logger.Warnf("recommend: explanation generation failed for %s: %v", c.card.ID, err)
				explanation = fallbackExplanation
			}

			products[i] = RecommendedProduct{
				ID:          c.card.ID,
				Name:        c.card.Name,
				ImageURL:    c.card.ImageURL,
				Explanation: explanation,
			}
		}()
	}
	wg.Wait()

	return products
}

func storeUnavailable(op string, err error) error {
	return e.Wrap(op, fmt.Errorf("%v: %w", err, e.ErrStoreUnavailable))
}
