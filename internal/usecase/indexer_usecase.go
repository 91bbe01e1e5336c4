package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/craftlink/go-backend/internal/cfg"
	"github.com/craftlink/go-backend/internal/domain"
	"github.com/craftlink/go-backend/pkg/e"
	"github.com/craftlink/go-backend/pkg/logger"
	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/schollz/progressbar/v3"
)

const (
	listPageSize       = 200
	embeddingBatchSize = 50
)

// IndexerUseCase реализует офлайн-построение векторного индекса:
// перебор каталога, дозаполнение эмбеддингов и запись пары артефактов снапшота.
type IndexerUseCase struct {
	productRepo  ProductRepository
	embeddings   EmbeddingsInfra
	snapshots    SnapshotWriter
	artifactRepo ArtifactRepository
	dbPool       transaction.Transactional
	indexCfg     cfg.IndexCfg
	genAICfg     cfg.GenAICfg
	logger       logger.Logger
}

func NewIndexerUC(
	productRepo ProductRepository,
	embeddings EmbeddingsInfra,
	snapshots SnapshotWriter,
	artifactRepo ArtifactRepository,
	dbPool transaction.Transactional,
	indexCfg cfg.IndexCfg,
	genAICfg cfg.GenAICfg,
	logger logger.Logger,
) *IndexerUseCase {
	return &IndexerUseCase{
		productRepo:  productRepo,
		embeddings:   embeddings,
		snapshots:    snapshots,
		artifactRepo: artifactRepo,
		dbPool:       dbPool,
		indexCfg:     indexCfg,
		genAICfg:     genAICfg,
		logger:       logger,
	}
}

// BuildIndex перестраивает индекс похожих товаров.
// Эмбеддинги, посчитанные актуальной моделью, переиспользуются из хранилища;
// устаревшие и отсутствующие считаются заново. Товары без текста пропускаются.
// Пара артефактов записывается атомарно и только целиком: частичных снапшотов
// не бывает, а прогон без единого вектора оставляет предыдущую пару на месте.
func (u *IndexerUseCase) BuildIndex(ctx context.Context, req *BuildIndexReq) (*BuildIndexRes, error) {
	const op = "IndexerUseCase.BuildIndex"

	products, err := u.listAll(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	res := &BuildIndexRes{Total: len(products)}

	var toEmbed []int
	for i := range products {
		if products[i].EmbeddingText() == "" {
			res.Skipped++
			continue
		}

		if u.reusable(&products[i], req.Force) {
			res.Reused++
			continue
		}

		toEmbed = append(toEmbed, i)
	}

	fresh := make(map[string][]float32, len(toEmbed))
	if len(toEmbed) > 0 {
		embedded, err := u.embedProducts(ctx, products, toEmbed)
		if err != nil {
			return nil, e.Wrap(op, err)
		}
		res.Embedded = len(embedded)

		if err := u.persistEmbeddings(ctx, embedded); err != nil {
			return nil, e.Wrap(op, err)
		}

		for _, upd := range embedded {
			fresh[upd.ProductID] = upd.Embedding
		}
	}

	vectors, productIDs := u.assembleRows(products, req.Force, fresh)

	// Пустая пара не пишется и не публикуется: на диске остаётся
	// предыдущий рабочий снапшот.
	if len(vectors) == 0 {
		u.logger.Warnf(
			"Nothing to index (total: %d, skipped: %d), keeping the previous snapshot",
			res.Total, res.Skipped,
		)
		return res, nil
	}

	buildID := uuid.NewString()
	snap := domain.NewIndexSnapshot(buildID, time.Now().UTC(), u.indexCfg.VectorSize, vectors, productIDs)

	if err := u.snapshots.WriteSnapshot(snap, u.indexCfg.VectorsPath, u.indexCfg.IdentityPath); err != nil {
		return nil, e.Wrap(op, err)
	}

	if u.artifactRepo != nil {
		if err := u.artifactRepo.UploadPair(ctx, buildID, u.indexCfg.VectorsPath, u.indexCfg.IdentityPath); err != nil {
			u.logger.Warnf("Failed to upload snapshot artifacts: %v", e.Wrap(op, err))
		}
	}

	res.BuildID = buildID
	res.VectorCount = len(vectors)

	u.logger.Infof(
		"Index build complete. build_id: %s, total: %d, embedded: %d, reused: %d, skipped: %d",
		buildID, res.Total, res.Embedded, res.Reused, res.Skipped,
	)

	return res, nil
}

// reusable сообщает, можно ли переиспользовать сохранённый эмбеддинг товара:
// он есть и посчитан актуальной моделью.
func (u *IndexerUseCase) reusable(product *domain.Product, force bool) bool {
	return !force && len(product.DescriptionEmbedding) > 0 && product.EmbeddingModel == u.genAICfg.EmbeddingModel
}

// assembleRows собирает строки снапшота строго в порядке перебора каталога,
// независимо от того, переиспользован вектор или посчитан в этом прогоне.
// Порядок строк — это и порядок разрешения равных дистанций при поиске.
func (u *IndexerUseCase) assembleRows(products []domain.Product, force bool, fresh map[string][]float32) ([][]float32, []string) {
	vectors := make([][]float32, 0, len(products))
	productIDs := make([]string, 0, len(products))

	for i := range products {
		product := &products[i]

		if vec, ok := fresh[product.ID]; ok {
			vectors = append(vectors, vec)
			productIDs = append(productIDs, product.ID)
			continue
		}

		if product.EmbeddingText() != "" && u.reusable(product, force) {
			vectors = append(vectors, product.DescriptionEmbedding)
			productIDs = append(productIDs, product.ID)
		}
	}

	return vectors, productIDs
}

// listAll перебирает весь каталог keyset-пагинацией в стабильном порядке по id.
func (u *IndexerUseCase) listAll(ctx context.Context) ([]domain.Product, error) {
	var (
		all     []domain.Product
		afterID string
	)

	for {
		page, err := u.productRepo.ListPage(ctx, afterID, listPageSize)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			return all, nil
		}

		all = append(all, page...)
		afterID = page[len(page)-1].ID
	}
}

// embedProducts параллельно считает эмбеддинги описаний с ограничением конкурентности.
func (u *IndexerUseCase) embedProducts(ctx context.Context, products []domain.Product, toEmbed []int) ([]EmbeddingUpdate, error) {
	sem := make(chan struct{}, u.genAICfg.MaxConcurrent)
	errCh := make(chan error, len(toEmbed))
	updates := make([]EmbeddingUpdate, len(toEmbed))

	bar := progressbar.Default(int64(len(toEmbed)), "embedding products")

	for slot, idx := range toEmbed {
		sem <- struct{}{}

		go func(slot, idx int) {
			defer func() {
				bar.Add(1)
				<-sem
			}()

			product := products[idx]

			vector, err := u.embeddings.EmbedText(ctx, product.EmbeddingText())
			if err != nil {
				errCh <- fmt.Errorf("product %s: %w", product.ID, err)
				return
			}

			if len(vector) != u.indexCfg.VectorSize {
				errCh <- fmt.Errorf("product %s: got dim %d, want %d: %w",
					product.ID, len(vector), u.indexCfg.VectorSize, e.ErrDimensionMismatch)
				return
			}

			updates[slot] = EmbeddingUpdate{
				ProductID: product.ID,
				Embedding: vector,
				Model:     u.genAICfg.EmbeddingModel,
			}
			errCh <- nil
		}(slot, idx)
	}

	for range toEmbed {
		if err := <-errCh; err != nil {
			return nil, err
		}
	}

	return updates, nil
}

// persistEmbeddings батчево сохраняет свежие эмбеддинги в хранилище документов.
func (u *IndexerUseCase) persistEmbeddings(ctx context.Context, updates []EmbeddingUpdate) error {
	for start := 0; start < len(updates); start += embeddingBatchSize {
		end := start + embeddingBatchSize
		if end > len(updates) {
			end = len(updates)
		}

		if err := u.persistBatch(ctx, updates[start:end]); err != nil {
			return err
		}
	}

	return nil
}

func (u *IndexerUseCase) persistBatch(ctx context.Context, batch []EmbeddingUpdate) error {
	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, u.dbPool)
	if err != nil {
		return err
	}
	defer func() {
		if tx.IsActive() {
			tx.Rollback(ctx)
		}
	}()
	ctx = context.WithValue(ctx, "tx", tx.Transaction())

	if err := u.productRepo.UpdateEmbeddings(ctx, batch); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
