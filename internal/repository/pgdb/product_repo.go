package pgdb

import (
	"context"
	"errors"

	"github.com/craftlink/go-backend/internal/domain"
	"github.com/craftlink/go-backend/internal/repository/pgdb/converter"
	"github.com/craftlink/go-backend/internal/usecase"
	"github.com/craftlink/go-backend/pkg/e"
	"github.com/craftlink/go-backend/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

const productColumns = `
	id, artisan_id, name, description, category, price, image_url,
	description_embedding, embedding_model, created_at, updated_at, is_archived`

// ProductRepo реализует репозиторий товаров поверх PostgreSQL.
type ProductRepo struct {
	pool *pgxpool.Pool
	conv converter.ProductConverter
}

func NewProductRepo(pool *pgxpool.Pool, conv converter.ProductConverter) *ProductRepo {
	return &ProductRepo{
		pool: pool,
		conv: conv,
	}
}

// Create добавляет новый товар. Идентификатор назначает база.
func (p *ProductRepo) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		INSERT INTO products (artisan_id, name, description, category, price, image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + productColumns

	var model converter.ProductModel
	err = tx.QueryRow(ctx, query,
		product.ArtisanID, product.Name, product.Description,
		product.Category, product.Price, product.ImageURL,
	).Scan(
		&model.ID, &model.ArtisanID, &model.Name, &model.Description,
		&model.Category, &model.Price, &model.ImageURL,
		&model.DescriptionEmbedding, &model.EmbeddingModel,
		&model.CreatedAt, &model.UpdatedAt, &model.IsArchived,
	)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(&model), nil
}

// GetByID возвращает товар по идентификатору вместе с эмбеддингом описания.
func (p *ProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	var model converter.ProductModel
	err := p.pool.QueryRow(ctx, query, id).Scan(
		&model.ID, &model.ArtisanID, &model.Name, &model.Description,
		&model.Category, &model.Price, &model.ImageURL,
		&model.DescriptionEmbedding, &model.EmbeddingModel,
		&model.CreatedAt, &model.UpdatedAt, &model.IsArchived,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
		}

		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(&model), nil
}

// GetManyByIDs возвращает только существующие товары; порядок строк не гарантируется.
func (p *ProductRepo) GetManyByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1) AND NOT is_archived`

	rows, err := p.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	return p.scanProducts(rows)
}

// ListPage возвращает страницу неархивных товаров keyset-пагинацией по id.
func (p *ProductRepo) ListPage(ctx context.Context, afterID string, limit int) ([]domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE NOT is_archived AND ($1 = '' OR id > $1::uuid)
		ORDER BY id
		LIMIT $2`

	rows, err := p.pool.Query(ctx, query, afterID, limit)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	return p.scanProducts(rows)
}

// UpdateEmbeddings батчево записывает эмбеддинги описаний и имя модели.
func (p *ProductRepo) UpdateEmbeddings(ctx context.Context, updates []usecase.EmbeddingUpdate) error {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		UPDATE products
		SET description_embedding = $2, embedding_model = $3, updated_at = NOW()
		WHERE id = $1`

	batch := &pgx.Batch{}
	for _, upd := range updates {
		batch.Queue(query, upd.ProductID, upd.Embedding, upd.Model)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for range updates {
		if _, err := results.Exec(); err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}
	}

	return nil
}

func (p *ProductRepo) scanProducts(rows pgx.Rows) ([]domain.Product, error) {
	result := make([]domain.Product, 0)
	for rows.Next() {
		var model converter.ProductModel
		if err := rows.Scan(
			&model.ID, &model.ArtisanID, &model.Name, &model.Description,
			&model.Category, &model.Price, &model.ImageURL,
			&model.DescriptionEmbedding, &model.EmbeddingModel,
			&model.CreatedAt, &model.UpdatedAt, &model.IsArchived,
		); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		result = append(result, *p.conv.ToEntity(&model))
	}
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}
