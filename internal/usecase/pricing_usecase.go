package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/craftlink/go-backend/internal/cfg"
	"github.com/craftlink/go-backend/pkg/e"
	"github.com/craftlink/go-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

// Пороговые значения количества товаров в категории для уровня уверенности.
const (
	confidenceHighMin   = 4
	confidenceMediumMin = 1

	confidenceHigh   = "high"
	confidenceMedium = "medium"
	confidenceLow    = "low"
)

const pricingSystemPrompt = "You are a pricing assistant for a handmade goods marketplace. " +
	"In two sentences, explain to an artisan how the suggested price was derived " +
	"from their costs and the market. Be encouraging and concrete. Plain text only."

// PricingUseCase реализует расчёт рекомендованной цены товара
// на основе себестоимости мастера и рыночных данных категории.
type PricingUseCase struct {
	pricingRepo PricingRepository
	textGen     TextGenInfra
	cfg         cfg.PricingCfg
	logger      logger.Logger
}

func NewPricingUC(pricingRepo PricingRepository, textGen TextGenInfra, cfg cfg.PricingCfg, logger logger.Logger) *PricingUseCase {
	return &PricingUseCase{
		pricingRepo: pricingRepo,
		textGen:     textGen,
		cfg:         cfg,
		logger:      logger,
	}
}

// SuggestPrice рассчитывает вилку цен для товара мастера.
// Базовая цена складывается из материалов и труда с наценкой, затем
// подтягивается к средней цене категории, если по ней достаточно данных.
func (p *PricingUseCase) SuggestPrice(ctx context.Context, req *SuggestPriceReq) (*SuggestPriceRes, error) {
	const op = "PricingUseCase.SuggestPrice"

	if err := p.validate(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	rules, err := p.pricingRepo.GetRules(ctx)
	if err != nil {
		p.logger.Warnf("Failed to load pricing rules, using defaults: %v", e.Wrap(op, err))
		rules = &PricingRules{
			HourlyRate: p.cfg.DefaultHourlyRate,
			MarginPct:  p.cfg.DefaultMarginPct,
		}
	}

	stats, err := p.pricingRepo.GetCategoryPriceStats(ctx, req.Category)
	if err != nil {
		p.logger.Warnf("Failed to load category price stats: %v", e.Wrap(op, err))
		stats = &CategoryPriceStats{}
	}

	base := p.basePrice(req, rules)
	suggested := p.applyMarketInfluence(base, stats, rules.NationalAvgPrice[req.Category])

	confidence := confidenceLow
	switch {
	case stats.Count >= confidenceHighMin:
		confidence = confidenceHigh
	case stats.Count >= confidenceMediumMin:
		confidence = confidenceMedium
	}

	res := &SuggestPriceRes{
		MinPrice:       roundToNearestFive(suggested.Mul(decimal.NewFromFloat(0.9))),
		MaxPrice:       roundToNearestFive(suggested.Mul(decimal.NewFromFloat(1.15))),
		SuggestedPrice: roundToNearestFive(suggested),
		Confidence:     confidence,
	}
	res.Explanation = p.explain(ctx, req, res, stats)

	return res, nil
}

// basePrice считает себестоимость с наценкой: (материалы + часы * ставка) * (1 + наценка/100).
func (p *PricingUseCase) basePrice(req *SuggestPriceReq, rules *PricingRules) decimal.Decimal {
	materials := decimal.NewFromInt(req.MaterialsCost)
	labor := decimal.NewFromFloat(req.LaborHours).Mul(decimal.NewFromInt(rules.HourlyRate))
	margin := decimal.NewFromInt(100 + rules.MarginPct).Div(decimal.NewFromInt(100))

	return materials.Add(labor).Mul(margin)
}

// applyMarketInfluence смещает базовую цену к рыночному ориентиру.
// Ориентир — средняя цена категории; когда сопоставимых товаров не больше
// одного, вместо неё берётся средняя по стране как единственное наблюдение.
// Вес рынка растёт с количеством наблюдений, но не превышает половины.
func (p *PricingUseCase) applyMarketInfluence(base decimal.Decimal, stats *CategoryPriceStats, nationalAvg int64) decimal.Decimal {
	count := int64(stats.Count)
	marketAvg := stats.AvgPrice
	if count <= 1 && nationalAvg > 0 {
		count = 1
		marketAvg = nationalAvg
	}

	if count == 0 || marketAvg <= 0 {
		return base
	}

	weight := decimal.NewFromInt(count).Div(decimal.NewFromInt(count + 4))
	half := decimal.NewFromFloat(0.5)
	if weight.GreaterThan(half) {
		weight = half
	}

	market := decimal.NewFromInt(marketAvg)

	return base.Mul(decimal.NewFromInt(1).Sub(weight)).Add(market.Mul(weight))
}

// explain запрашивает у языковой модели короткое объяснение цены.
// При ошибке генерации возвращается статичный текст.
func (p *PricingUseCase) explain(ctx context.Context, req *SuggestPriceReq, res *SuggestPriceRes, stats *CategoryPriceStats) string {
	const op = "PricingUseCase.explain"

	userPrompt := fmt.Sprintf(
		"Category: %s. Materials cost: %d paise. Labor: %.1f hours. Suggested price: %d paise (range %d-%d). Comparable items in category: %d.",
		req.Category, req.MaterialsCost, req.LaborHours,
		res.SuggestedPrice, res.MinPrice, res.MaxPrice, stats.Count,
	)

	text, err := p.textGen.GenerateContent(ctx, pricingSystemPrompt, userPrompt)
	if err != nil || strings.TrimSpace(text) == "" {
		p.logger.Warnf("Failed to generate pricing explanation: %v", e.Wrap(op, err))
		return "This price covers your materials and labor with a fair margin, adjusted to similar items on the marketplace."
	}

	return strings.TrimSpace(text)
}

func (p *PricingUseCase) validate(req *SuggestPriceReq) error {
	if strings.TrimSpace(req.Category) == "" {
		return e.ErrInvalidPricingInput
	}

	if req.MaterialsCost < 0 || req.LaborHours < 0 {
		return e.ErrInvalidPricingInput
	}

	return nil
}

// roundToNearestFive округляет цену в пайсах до ближайших 5 рупий (500 пайс).
func roundToNearestFive(d decimal.Decimal) int64 {
	step := decimal.NewFromInt(500)

	return d.Div(step).Round(0).Mul(step).IntPart()
}
