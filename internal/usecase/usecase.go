package usecase

import "context"

type RecommendUC interface {
	GetSimilarProducts(ctx context.Context, req *SimilarProductsReq) (*SimilarProductsRes, error)
}

type ProductUC interface {
	RegisterNewProduct(ctx context.Context, req *AddNewProductReq) (*RegisterProductRes, error)
}

type PricingUC interface {
	SuggestPrice(ctx context.Context, req *SuggestPriceReq) (*SuggestPriceRes, error)
}
