package http

import (
	_ "github.com/craftlink/go-backend/docs" // Импорт сгенерированных файлов
	"github.com/craftlink/go-backend/internal/usecase"
	"github.com/craftlink/go-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

func (r *Router) Init(prUC usecase.ProductUC, recUC usecase.RecommendUC, priceUC usecase.PricingUC) {
	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"), // ссылка на JSON
	))

	r.router.Route("/api/v1", func(v1 chi.Router) {
		prHandler := NewProductHandler(prUC, r.logger)
		recHandler := NewRecommendationHandler(recUC, r.logger)
		priceHandler := NewPricingHandler(priceUC, r.logger)

		registerProductRoutes(v1, prHandler, recHandler)
		registerPricingRoutes(v1, priceHandler)
	})
}

func registerProductRoutes(router chi.Router, prHandler *ProductHandler, recHandler *RecommendationHandler) {
	router.Route("/products", func(pr chi.Router) {
		pr.Post("/", prHandler.registerNewProduct)
		pr.Get("/{id}/similar", recHandler.getSimilarProducts)
	})
}

func registerPricingRoutes(router chi.Router, priceHandler *PricingHandler) {
	router.Route("/pricing", func(pc chi.Router) {
		pc.Post("/suggest", priceHandler.suggestPrice)
	})
}
