package domain

import "time"

// IndexSnapshot — неизменяемый снапшот плоского векторного индекса.
// Строка i матрицы Vectors соответствует ProductIDs[i]; оба списка
// собираются одним прогоном индексатора и валидны только парой.
type IndexSnapshot struct {
	BuildID    string // uuid прогона индексатора, общий для обоих артефактов
	CreatedAt  time.Time
	Dim        int
	Vectors    [][]float32
	ProductIDs []string
}

func NewIndexSnapshot(buildID string, createdAt time.Time, dim int, vectors [][]float32, productIDs []string) *IndexSnapshot {
	return &IndexSnapshot{
		BuildID:    buildID,
		CreatedAt:  createdAt,
		Dim:        dim,
		Vectors:    vectors,
		ProductIDs: productIDs,
	}
}

// Neighbor — результат поиска ближайшего соседа: идентификатор товара
// и квадрат L2-дистанции до запроса (меньше — ближе).
type Neighbor struct {
	ProductID string
	Distance  float32
}
