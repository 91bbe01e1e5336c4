package usecase

import "time"

// PRODUCT USECASE

// AddNewProductReq — запрос на публикацию нового товара мастера.
type AddNewProductReq struct {
	ArtisanID   string
	Name        string
	Description string
	Category    string
	Price       int64
	Images      []ProductImage
}

// ProductImage представляет изображение, загруженное через multipart/form-data.
type ProductImage struct {
	Data     []byte // байты изображения
	MimeType string // Content-Type из multipart (image/jpeg)
	Size     int64  // фактический размер в байтах
	Name     string // оригинальное имя файла (для логов)
}

// RegisterProductRes — результат публикации товара.
type RegisterProductRes struct {
	ProductID string
	EventID   string
}

// RECOMMEND USECASE

// SimilarProductsReq — запрос похожих товаров для заданного seed-товара.
type SimilarProductsReq struct {
	ProductID string
	K         int
	Fairness  bool
}

// RecommendedProduct — DTO одного элемента выдачи.
type RecommendedProduct struct {
	ID          string
	Name        string
	ImageURL    string
	Explanation string
}

// SimilarProductsRes — ранжированная выдача похожих товаров.
type SimilarProductsRes struct {
	Products        []RecommendedProduct
	SnapshotBuildID string
}

// ProductCard — компактная карточка товара для обогащения кандидатов и кэша.
type ProductCard struct {
	ID        string
	ArtisanID string
	Name      string
	Category  string
	ImageURL  string
}

// PRICING USECASE

// SuggestPriceReq — входные данные мастера для подсказки цены.
// MaterialsCost в пайсах.
type SuggestPriceReq struct {
	Category      string
	MaterialsCost int64
	LaborHours    float64
}

// SuggestPriceRes — диапазон цен (в пайсах) с уровнем уверенности и пояснением.
type SuggestPriceRes struct {
	MinPrice       int64
	MaxPrice       int64
	SuggestedPrice int64
	Confidence     string
	Explanation    string
}

// PricingRules — правила ценообразования (единственная строка в хранилище).
type PricingRules struct {
	HourlyRate       int64 // пайс/час
	MarginPct        int64
	NationalAvgPrice map[string]int64 // средняя цена по стране на категорию, пайсы
}

// CategoryPriceStats — статистика сопоставимых товаров категории.
type CategoryPriceStats struct {
	Count    int
	AvgPrice int64
}

// INDEXER USECASE

// EmbeddingUpdate — запись эмбеддинга для батчевой записи в хранилище.
type EmbeddingUpdate struct {
	ProductID string
	Embedding []float32
	Model     string
}

// BuildIndexReq — параметры прогона индексатора.
type BuildIndexReq struct {
	Force bool // пересчитать эмбеддинги даже для свежих записей
}

// BuildIndexRes — сводка прогона индексатора.
type BuildIndexRes struct {
	Total       int // всего товаров в каталоге
	Embedded    int // эмбеддингов посчитано в этом прогоне
	Reused      int // эмбеддингов переиспользовано
	Skipped     int // товаров без текста, пропущено
	BuildID     string
	VectorCount int
}

// INFRASTRUCTURE

type WriteRawMessageReq struct {
	ProductID string
	Payload   []byte
}

// UploadImagesReq — запрос на загрузку изображений товара.
type UploadImagesReq struct {
	Name   string
	Images []ProductImage
}

// UploadImagesRes — результат загрузки изображений (ключи в MinIO).
type UploadImagesRes struct {
	ImagesKeys []string
}

// OUTBOX

// Статусы жизненного цикла outbox-события.
const (
	Pending    = "pending"
	Processing = "processing"
	Processed  = "processed"
)

type OutboxEvent struct {
	ID          int64
	EventID     string
	EventType   string
	ProductID   string
	Payload     []byte
	Status      string
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// MAPPERS

func NewAddNewProductReq(artisanID, name, description, category string, price int64, images []ProductImage) *AddNewProductReq {
	return &AddNewProductReq{
		ArtisanID:   artisanID,
		Name:        name,
		Description: description,
		Category:    category,
		Price:       price,
		Images:      images,
	}
}

func NewProductImage(data []byte, mimeType string, size int64, name string) *ProductImage {
	return &ProductImage{
		Data:     data,
		MimeType: mimeType,
		Size:     size,
		Name:     name,
	}
}

func NewSimilarProductsReq(productID string, k int, fairness bool) *SimilarProductsReq {
	return &SimilarProductsReq{
		ProductID: productID,
		K:         k,
		Fairness:  fairness,
	}
}

func NewSimilarProductsRes(products []RecommendedProduct, snapshotBuildID string) *SimilarProductsRes {
	return &SimilarProductsRes{
		Products:        products,
		SnapshotBuildID: snapshotBuildID,
	}
}

func NewUploadImagesReq(name string, images []ProductImage) *UploadImagesReq {
	return &UploadImagesReq{
		Name:   name,
		Images: images,
	}
}

func NewUploadImagesRes(imagesKeys []string) *UploadImagesRes {
	return &UploadImagesRes{
		ImagesKeys: imagesKeys,
	}
}

func NewWriteRawMessageReq(productID string, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		ProductID: productID,
		Payload:   payload,
	}
}
