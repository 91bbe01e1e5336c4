package converter

import (
	"github.com/craftlink/go-backend/internal/domain"
	"github.com/craftlink/go-backend/internal/usecase"
)

// ProductConverter преобразует сущности Product между domain и моделью PostgreSQL.
type ProductConverter struct{}

func (ProductConverter) ToModel(entity *domain.Product) *ProductModel {
	var model *string
	if entity.EmbeddingModel != "" {
		model = &entity.EmbeddingModel
	}

	return &ProductModel{
		ID:                   entity.ID,
		ArtisanID:            entity.ArtisanID,
		Name:                 entity.Name,
		Description:          entity.Description,
		Category:             entity.Category,
		Price:                entity.Price,
		ImageURL:             entity.ImageURL,
		DescriptionEmbedding: entity.DescriptionEmbedding,
		EmbeddingModel:       model,
		CreatedAt:            entity.CreatedAt,
		UpdatedAt:            entity.UpdatedAt,
		IsArchived:           entity.IsArchived,
	}
}

func (ProductConverter) ToEntity(model *ProductModel) *domain.Product {
	embeddingModel := ""
	if model.EmbeddingModel != nil {
		embeddingModel = *model.EmbeddingModel
	}

	return &domain.Product{
		ID:                   model.ID,
		ArtisanID:            model.ArtisanID,
		Name:                 model.Name,
		Description:          model.Description,
		Category:             model.Category,
		Price:                model.Price,
		ImageURL:             model.ImageURL,
		DescriptionEmbedding: model.DescriptionEmbedding,
		EmbeddingModel:       embeddingModel,
		CreatedAt:            model.CreatedAt,
		UpdatedAt:            model.UpdatedAt,
		IsArchived:           model.IsArchived,
	}
}

// OutboxEventConverter преобразует сущности OutboxEvent между usecase и моделью PostgreSQL.
type OutboxEventConverter struct{}

func (OutboxEventConverter) ToModel(entity *usecase.OutboxEvent) *OutboxEventModel {
	return &OutboxEventModel{
		ID:          entity.ID,
		EventID:     entity.EventID,
		EventType:   entity.EventType,
		ProductID:   entity.ProductID,
		Payload:     entity.Payload,
		Status:      entity.Status,
		CreatedAt:   entity.CreatedAt,
		ProcessedAt: entity.ProcessedAt,
	}
}

func (OutboxEventConverter) ToEntity(model *OutboxEventModel) *usecase.OutboxEvent {
	return &usecase.OutboxEvent{
		ID:          model.ID,
		EventID:     model.EventID,
		EventType:   model.EventType,
		ProductID:   model.ProductID,
		Payload:     model.Payload,
		Status:      model.Status,
		CreatedAt:   model.CreatedAt,
		ProcessedAt: model.ProcessedAt,
	}
}

func (c OutboxEventConverter) ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent {
	entities := make([]*usecase.OutboxEvent, 0, len(models))
	for _, m := range models {
		entities = append(entities, c.ToEntity(m))
	}

	return entities
}
