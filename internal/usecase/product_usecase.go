package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/craftlink/go-backend/internal/domain"
	"github.com/craftlink/go-backend/pkg/e"
	"github.com/craftlink/go-backend/pkg/logger"
	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const eventTypeProductRegistered = "product.registered"

// productRegisteredPayload — тело outbox-события о публикации товара.
// Потребители (планировщик переиндексации) читают его из Kafka.
type productRegisteredPayload struct {
	EventID   string    `json:"event_id"`
	ProductID string    `json:"product_id"`
	ArtisanID string    `json:"artisan_id"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

// ProductUseCase реализует бизнес-логику публикации товаров мастеров.
type ProductUseCase struct {
	productRepo ProductRepository
	outboxRepo  OutboxRepository
	dbPool      transaction.Transactional
	imagesInfra ImagesInfra
	cacheRepo   CacheRepository
	logger      logger.Logger
}

func NewProductUC(
	productRepo ProductRepository,
	outboxRepo OutboxRepository,
	dbPool transaction.Transactional,
	imagesInfra ImagesInfra,
	cacheRepo CacheRepository,
	logger logger.Logger,
) *ProductUseCase {
	return &ProductUseCase{
		productRepo: productRepo,
		outboxRepo:  outboxRepo,
		dbPool:      dbPool,
		imagesInfra: imagesInfra,
		cacheRepo:   cacheRepo,
		logger:      logger,
	}
}

// RegisterNewProduct публикует новый товар: загружает изображения, создаёт
// запись в хранилище и outbox-событие в одной транзакции.
// Эмбеддинг описания здесь не считается — им владеет офлайн-индексатор.
func (p *ProductUseCase) RegisterNewProduct(ctx context.Context, req *AddNewProductReq) (*RegisterProductRes, error) {
	const op = "ProductUseCase.RegisterNewProduct"

	var err error
	if err = p.validateProduct(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	var (
		imagesRes *UploadImagesRes
		uploaded  bool
	)

	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, p.dbPool)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	// Если произошла ошибка, происходит Rollback транзакции и очистка загруженных изображений
	defer func() {
		if err != nil {
			if tx.IsActive() {
				tx.Rollback(ctx)
			}

			if uploaded && imagesRes != nil {
				p.logger.Warnf(
					"Cleaning up orphaned images after transaction failure. product_name: %s, error: %v",
					req.Name,
					e.Wrap(op, err),
				)

				p.imagesInfra.CleanupImages(imagesRes.ImagesKeys)
			}
		}
	}()
	ctx = context.WithValue(ctx, "tx", tx.Transaction())

	// Сохранение изображений в MinIO
	imagesRes, err = p.imagesInfra.UploadImages(ctx, NewUploadImagesReq(req.Name, req.Images))
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	uploaded = true

	imageURL := ""
	if len(imagesRes.ImagesKeys) > 0 {
		imageURL = imagesRes.ImagesKeys[0]
	}

	product, err := p.productRepo.Create(ctx,
		domain.NewProduct(req.ArtisanID, req.Name, req.Description, req.Category, req.Price, imageURL))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	event, err := p.createOutboxEvent(ctx, product)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, e.Wrap(op, err)
	}

	// Удаление из кэша старых данных товара
	if err := p.cacheRepo.DeleteProducts(ctx, []string{product.ID}); err != nil {
		p.logger.Warnf("Failed to invalidate product cache: %v", e.Wrap(op, err))
	}

	return &RegisterProductRes{ProductID: product.ID, EventID: event.EventID}, nil
}

func (p *ProductUseCase) createOutboxEvent(ctx context.Context, product *domain.Product) (*OutboxEvent, error) {
	eventID := uuid.NewString()
	payload, err := json.Marshal(productRegisteredPayload{
		EventID:   eventID,
		ProductID: product.ID,
		ArtisanID: product.ArtisanID,
		Category:  product.Category,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	return p.outboxRepo.Create(ctx, &OutboxEvent{
		EventID:   eventID,
		EventType: eventTypeProductRegistered,
		ProductID: product.ID,
		Payload:   payload,
		Status:    "pending",
		CreatedAt: time.Now().UTC(),
	})
}

// validateProduct проверяет корректность входных данных запроса на публикацию товара.
func (p *ProductUseCase) validateProduct(req *AddNewProductReq) error {
	if strings.TrimSpace(req.Name) == "" {
		return e.ErrProductNameRequired
	}

	if strings.TrimSpace(req.ArtisanID) == "" {
		return e.ErrArtisanRequired
	}

	if req.Price <= 0 {
		return e.ErrPriceMustBePositive
	}

	if len(req.Images) == 0 {
		return e.ErrNoImages
	}

	return nil
}
