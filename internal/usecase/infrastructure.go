package usecase

import "context"

// EmbeddingsInfra — клиент провайдера эмбеддингов.
type EmbeddingsInfra interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// TextGenInfra — клиент генерации текста (пояснения к рекомендациям и ценам).
type TextGenInfra interface {
	GenerateContent(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

type ImagesInfra interface {
	UploadImages(ctx context.Context, req *UploadImagesReq) (*UploadImagesRes, error)
	CleanupImages(keys []string)
}

type MessageProducer interface {
	WriteRawMessage(ctx context.Context, req *WriteRawMessageReq) error
}
