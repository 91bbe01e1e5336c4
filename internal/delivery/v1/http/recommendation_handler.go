package http

import (
	"net/http"
	"strconv"

	"github.com/craftlink/go-backend/internal/usecase"
	"github.com/craftlink/go-backend/pkg/e"
	"github.com/craftlink/go-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type RecommendationHandler struct {
	recommendUsecase usecase.RecommendUC
	logger           logger.Logger
}

func NewRecommendationHandler(recommendUsecase usecase.RecommendUC, logger logger.Logger) *RecommendationHandler {
	return &RecommendationHandler{recommendUsecase: recommendUsecase, logger: logger}
}

// getSimilarProducts
//
//	@Summary		Похожие товары
//	@Description	Возвращает товары, похожие на указанный. Пустой список — корректный ответ.
//	@Tags			recommendations
//	@Produce		json
//	@Param			id			path		string			true	"Идентификатор товара"
//	@Param			k			query		int				false	"Количество рекомендаций (по умолчанию 5, максимум 50)"
//	@Param			fairness	query		bool			false	"Переранжирование по разнообразию мастеров"
//	@Success		200			{object}	usecase.SimilarProductsRes
//	@Failure		400			{object}	ErrorResponse	"Некорректный параметр k"
//	@Failure		404			{object}	ErrorResponse	"Товар не найден"
//	@Failure		503			{object}	ErrorResponse	"Хранилище недоступно"
//	@Router			/products/{id}/similar [get]
func (h *RecommendationHandler) getSimilarProducts(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")

	k := 0
	if kStr := r.URL.Query().Get("k"); kStr != "" {
		parsed, err := strconv.Atoi(kStr)
		if err != nil || parsed < 0 {
			h.logger.Warnf("%d %s: k=%s", http.StatusBadRequest, e.ErrInvalidK.Error(), kStr)
			WriteError(w, e.ErrInvalidK)
			return
		}
		k = parsed
	}

	fairness := false
	if fStr := r.URL.Query().Get("fairness"); fStr != "" {
		parsed, err := strconv.ParseBool(fStr)
		if err != nil {
			h.logger.Warnf("%d %s: fairness=%s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), fStr)
			WriteError(w, e.ErrStatusBadRequest)
			return
		}
		fairness = parsed
	}

	res, err := h.recommendUsecase.GetSimilarProducts(r.Context(), usecase.NewSimilarProductsReq(productID, k, fairness))
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, res)
}
