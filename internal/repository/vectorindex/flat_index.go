// Package vectorindex реализует хранилище векторного индекса: плоский
// (полный перебор) точный поиск ближайших соседей по квадрату L2-дистанции
// поверх снапшота, загруженного из пары артефактов.
//
// Индекс неизменяем после загрузки, поэтому конкурентные чтения не требуют
// блокировок. Обновление — только пересборкой снапшота и рестартом процесса.
package vectorindex

import (
	"fmt"
	"sort"
	"time"

	"github.com/craftlink/go-backend/internal/domain"
	"github.com/craftlink/go-backend/pkg/e"
	"github.com/craftlink/go-backend/pkg/logger"
)

// FlatIndex — плоский векторный индекс с позиционной картой идентичности.
type FlatIndex struct {
	dim       int
	vectors   [][]float32
	ids       []string
	buildID   string
	createdAt time.Time
	loaded    bool
	logger    logger.Logger
}

// LoadFlatIndex читает пару артефактов и строит индекс.
// Ошибка загрузки фатальна для владеющего процесса: без валидного индекса
// сервис не должен принимать трафик.
func LoadFlatIndex(vectorsPath, identityPath string, log logger.Logger) (*FlatIndex, error) {
	snap, err := ReadSnapshot(vectorsPath, identityPath)
	if err != nil {
		return nil, err
	}

	idx := NewFlatIndexFromSnapshot(snap, log)
	log.Infof("vector index loaded: build_id=%s created_at=%s vectors=%d dim=%d",
		idx.buildID, idx.createdAt.Format(time.RFC3339), len(idx.vectors), idx.dim)

	return idx, nil
}

// NewFlatIndexFromSnapshot строит индекс из уже загруженного снапшота.
func NewFlatIndexFromSnapshot(snap *domain.IndexSnapshot, log logger.Logger) *FlatIndex {
	return &FlatIndex{
		dim:       snap.Dim,
		vectors:   snap.Vectors,
		ids:       snap.ProductIDs,
		buildID:   snap.BuildID,
		createdAt: snap.CreatedAt,
		loaded:    true,
		logger:    log,
	}
}

// Search возвращает до k ближайших строк индекса по возрастанию квадрата
// L2-дистанции. Равные дистанции упорядочиваются по номеру строки.
// Несовпадение размерности запроса — нарушение контракта вызывающего
// (e.ErrDimensionMismatch). Незагруженный индекс отвечает пустой выдачей
// с предупреждением: «нет индекса» значит «нет рекомендаций», а не отказ.
func (f *FlatIndex) Search(query []float32, k int) ([]domain.Neighbor, error) {
	if !f.loaded || len(f.vectors) == 0 {
		f.logger.Warnf("vector index search called but index is not loaded")
		return []domain.Neighbor{}, nil
	}

	if len(query) != f.dim {
		return nil, fmt.Errorf("got %d, index dim %d: %w", len(query), f.dim, e.ErrDimensionMismatch)
	}

	if k <= 0 {
		return []domain.Neighbor{}, nil
	}

	type row struct {
		idx  int
		dist float32
	}

	rows := make([]row, len(f.vectors))
	for i, vec := range f.vectors {
		var sum float32
		for j := 0; j < f.dim; j++ {
			d := query[j] - vec[j]
			sum += d * d
		}
		rows[i] = row{idx: i, dist: sum}
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].dist < rows[j].dist })

	if k > len(rows) {
		k = len(rows)
	}

	neighbors := make([]domain.Neighbor, 0, k)
	for _, r := range rows[:k] {
		// Строка за пределами карты идентичности — повреждение снапшота,
		// пропускаем молча вместо отказа всего запроса.
		if r.idx >= len(f.ids) {
			f.logger.Warnf("index row %d has no identity mapping (map size %d), skipping", r.idx, len(f.ids))
			continue
		}
		neighbors = append(neighbors, domain.Neighbor{ProductID: f.ids[r.idx], Distance: r.dist})
	}

	return neighbors, nil
}

// Size возвращает количество проиндексированных векторов.
func (f *FlatIndex) Size() int {
	return len(f.vectors)
}

// Dim возвращает размерность индекса.
func (f *FlatIndex) Dim() int {
	return f.dim
}

// BuildID возвращает идентификатор прогона индексатора, собравшего снапшот.
func (f *FlatIndex) BuildID() string {
	return f.buildID
}

// CreatedAt возвращает время сборки снапшота.
func (f *FlatIndex) CreatedAt() time.Time {
	return f.createdAt
}
