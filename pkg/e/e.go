package e

import "fmt"

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Ошибки конфигурации
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect env variable")

	// Ошибки векторного индекса
	ErrIndexLoad         = fmt.Errorf("vector index load failed")
	ErrDimensionMismatch = fmt.Errorf("query vector dimension mismatch")

	// Ошибки внешних моделей
	ErrEmbeddingProvider = fmt.Errorf("embedding provider failed")
	ErrGenerationFailed  = fmt.Errorf("text generation failed")

	// Условия рекомендательного пайплайна
	ErrProductNotFound  = fmt.Errorf("product not found")
	ErrStoreUnavailable = fmt.Errorf("store unavailable")

	// 400 Bad Request
	ErrProductNameRequired  = fmt.Errorf("product name is required")
	ErrArtisanRequired      = fmt.Errorf("artisan id is required")
	ErrPriceMustBePositive  = fmt.Errorf("price must be positive")
	ErrNoImages             = fmt.Errorf("no images provided")
	ErrTooManyImages        = fmt.Errorf("too many images")
	ErrUnsupportedMediaType = fmt.Errorf("unsupported media type")
	ErrExpectedMultipart    = fmt.Errorf("expected multipart/form-data")
	ErrMissingFields        = fmt.Errorf("missing required fields")
	ErrInvalidPrice         = fmt.Errorf("invalid price")
	ErrPricePrecision       = fmt.Errorf("price must have at most 2 decimal places")
	ErrInvalidK             = fmt.Errorf("invalid k parameter")
	ErrInvalidPricingInput  = fmt.Errorf("invalid pricing input")
	ErrFileTooLarge         = fmt.Errorf("file too large")
	ErrStatusBadRequest     = fmt.Errorf("bad request")
	ErrInternalServerError  = fmt.Errorf("internal server error")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
