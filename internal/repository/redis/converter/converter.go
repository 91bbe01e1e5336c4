package converter

import "github.com/craftlink/go-backend/internal/usecase"

// ProductCardConverter преобразует карточки товаров между usecase и моделью кэша.
type ProductCardConverter struct{}

func (ProductCardConverter) ToUseCase(model *ProductCardRedisModel) *usecase.ProductCard {
	return &usecase.ProductCard{
		ID:        model.ID,
		ArtisanID: model.ArtisanID,
		Name:      model.Name,
		Category:  model.Category,
		ImageURL:  model.ImageURL,
	}
}

func (ProductCardConverter) ToRedisModel(card usecase.ProductCard) ProductCardRedisModel {
	return ProductCardRedisModel{
		ID:        card.ID,
		ArtisanID: card.ArtisanID,
		Name:      card.Name,
		Category:  card.Category,
		ImageURL:  card.ImageURL,
	}
}

func (c ProductCardConverter) ToArrRedisModel(cards []usecase.ProductCard) []ProductCardRedisModel {
	models := make([]ProductCardRedisModel, 0, len(cards))
	for _, card := range cards {
		models = append(models, c.ToRedisModel(card))
	}

	return models
}
