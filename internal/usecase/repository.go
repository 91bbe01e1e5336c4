package usecase

import (
	"context"

	"github.com/craftlink/go-backend/internal/domain"
)

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	// GetByID возвращает e.ErrProductNotFound, если товара нет.
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	// GetManyByIDs возвращает только существующие товары; порядок не гарантируется.
	GetManyByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
	// UpdateEmbeddings батчево записывает эмбеддинги; вызывается только индексатором.
	UpdateEmbeddings(ctx context.Context, updates []EmbeddingUpdate) error
	// ListPage — keyset-пагинация по id для полного перебора каталога индексатором.
	ListPage(ctx context.Context, afterID string, limit int) ([]domain.Product, error)
}

type PricingRepository interface {
	GetRules(ctx context.Context) (*PricingRules, error)
	GetCategoryPriceStats(ctx context.Context, category string) (*CategoryPriceStats, error)
}

// VectorIndex — контракт хранилища векторного индекса для движка рекомендаций.
type VectorIndex interface {
	Search(query []float32, k int) ([]domain.Neighbor, error)
	Size() int
	BuildID() string
}

type CacheRepository interface {
	GetProducts(ctx context.Context, ids []string) (map[string]ProductCard, error)
	SetProducts(ctx context.Context, products []ProductCard) error
	DeleteProducts(ctx context.Context, ids []string) error
}

type ImageRepository interface {
	Upload(ctx context.Context, image *domain.Image) (string, error)
	Delete(ctx context.Context, key string) error
}

// SnapshotWriter атомарно сохраняет пару артефактов снапшота на диск.
type SnapshotWriter interface {
	WriteSnapshot(snap *domain.IndexSnapshot, vectorsPath, identityPath string) error
}

// ArtifactRepository хранит пару артефактов снапшота в объектном хранилище.
type ArtifactRepository interface {
	UploadPair(ctx context.Context, buildID, vectorsPath, identityPath string) error
	DownloadPair(ctx context.Context, vectorsPath, identityPath string) error
}

type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
}
