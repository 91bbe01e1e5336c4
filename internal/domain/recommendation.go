package domain

// Recommendation — один элемент ранжированной выдачи похожих товаров.
type Recommendation struct {
	ProductID   string
	Name        string
	ImageURL    string
	Explanation string
	Distance    float32
}
