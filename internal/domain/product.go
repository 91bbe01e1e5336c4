package domain

import "time"

// Product описывает карточку товара мастера.
// DescriptionEmbedding заполняется только офлайн-индексатором;
// его отсутствие означает, что товар невидим для поиска похожих.
type Product struct {
	ID                   string // uuid, назначается хранилищем при создании
	ArtisanID            string
	Name                 string
	Description          string
	Category             string
	Price                int64 // Цена хранится в пайсах
	ImageURL             string
	DescriptionEmbedding []float32
	EmbeddingModel       string // модель, которой посчитан эмбеддинг
	CreatedAt            time.Time
	UpdatedAt            *time.Time
	IsArchived           bool
}

func NewProduct(artisanID, name, description, category string, price int64, imageURL string) *Product {
	return &Product{
		ArtisanID:   artisanID,
		Name:        name,
		Description: description,
		Category:    category,
		Price:       price,
		ImageURL:    imageURL,
	}
}

// EmbeddingText возвращает текст, по которому считается эмбеддинг товара:
// описание, при его отсутствии — название, иначе пустая строка.
func (p *Product) EmbeddingText() string {
	if p.Description != "" {
		return p.Description
	}
	return p.Name
}
