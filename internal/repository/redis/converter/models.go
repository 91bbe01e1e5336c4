package converter

type ProductCardRedisModel struct {
	ID        string `json:"id"`
	ArtisanID string `json:"artisan_id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	ImageURL  string `json:"image_url"`
}
