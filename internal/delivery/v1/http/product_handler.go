package http

import (
	"net/http"

	"github.com/craftlink/go-backend/internal/usecase"
	"github.com/craftlink/go-backend/pkg/e"
	"github.com/craftlink/go-backend/pkg/logger"
)

type ProductHandler struct {
	productUsecase usecase.ProductUC
	logger         logger.Logger
}

func NewProductHandler(productUsecase usecase.ProductUC, logger logger.Logger) *ProductHandler {
	return &ProductHandler{productUsecase: productUsecase, logger: logger}
}

// registerNewProduct
//
//	@Summary		Публикация нового товара
//	@Description	Создаёт товар мастера с изображениями в каталоге
//	@Tags			products
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			artisan_id	formData	string					true	"Идентификатор мастера"
//	@Param			name		formData	string					true	"Название товара"
//	@Param			description	formData	string					false	"Описание товара"
//	@Param			category	formData	string					true	"Категория"
//	@Param			price		formData	number					true	"Цена в рупиях"
//	@Param			images		formData	file					true	"Изображения товара"
//	@Success		201			{object}	map[string]interface{}	"Успешное создание"
//	@Failure		400			{object}	ErrorResponse			"Ошибка валидации"
//	@Router			/products [post]
func (p *ProductHandler) registerNewProduct(w http.ResponseWriter, r *http.Request) {
	const (
		maxTotalRequestSize = 150 << 20
		maxMemory           = 32 << 20
	)

	r.Body = http.MaxBytesReader(w, r.Body, maxTotalRequestSize)

	if err := ensureMultipartForm(r, maxMemory); err != nil {
		p.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), r.Header.Get("Content-Type"))
		WriteError(w, err)
		return
	}

	prMeta, err := parseProductForm(r)
	if err != nil {
		p.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	images, err := parseImages(r.MultipartForm.File["images"])
	if err != nil {
		p.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	res, err := p.productUsecase.RegisterNewProduct(r.Context(),
		usecase.NewAddNewProductReq(prMeta.ArtisanID, prMeta.Name, prMeta.Description, prMeta.Category, prMeta.Price, images))
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, map[string]interface{}{
		"ProductID": res.ProductID,
		"EventID":   res.EventID,
	})
}
