package http

import (
	"encoding/json"
	"net/http"

	"github.com/craftlink/go-backend/internal/usecase"
	"github.com/craftlink/go-backend/pkg/e"
	"github.com/craftlink/go-backend/pkg/logger"
)

type PricingHandler struct {
	pricingUsecase usecase.PricingUC
	logger         logger.Logger
}

func NewPricingHandler(pricingUsecase usecase.PricingUC, logger logger.Logger) *PricingHandler {
	return &PricingHandler{pricingUsecase: pricingUsecase, logger: logger}
}

type suggestPriceRequest struct {
	Category      string  `json:"category"`
	MaterialsCost int64   `json:"materials_cost"`
	LaborHours    float64 `json:"labor_hours"`
}

// suggestPrice
//
//	@Summary		Рекомендация цены
//	@Description	Рассчитывает вилку цен для товара по себестоимости и рынку категории
//	@Tags			pricing
//	@Accept			json
//	@Produce		json
//	@Param			request	body		suggestPriceRequest	true	"Параметры расчёта (цены в пайсах)"
//	@Success		200		{object}	usecase.SuggestPriceRes
//	@Failure		400		{object}	ErrorResponse	"Некорректные входные данные"
//	@Router			/pricing/suggest [post]
func (h *PricingHandler) suggestPrice(w http.ResponseWriter, r *http.Request) {
	var req suggestPriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, e.ErrStatusBadRequest)
		return
	}

	res, err := h.pricingUsecase.SuggestPrice(r.Context(), &usecase.SuggestPriceReq{
		Category:      req.Category,
		MaterialsCost: req.MaterialsCost,
		LaborHours:    req.LaborHours,
	})
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, res)
}
