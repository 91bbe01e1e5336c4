package converter

import "time"

// ProductModel представляет запись таблицы products в PostgreSQL.
type ProductModel struct {
	ID                   string     `db:"id"`
	ArtisanID            string     `db:"artisan_id"`
	Name                 string     `db:"name"`
	Description          string     `db:"description"`
	Category             string     `db:"category"`
	Price                int64      `db:"price"`
	ImageURL             string     `db:"image_url"`
	DescriptionEmbedding []float32  `db:"description_embedding"`
	EmbeddingModel       *string    `db:"embedding_model"`
	CreatedAt            time.Time  `db:"created_at"`
	UpdatedAt            *time.Time `db:"updated_at"`
	IsArchived           bool       `db:"is_archived"`
}

// OutboxEventModel представляет запись таблицы outbox_events в PostgreSQL.
type OutboxEventModel struct {
	ID        int64     `db:"id"`
	EventID   string    `db:"event_id"`
	EventType string    `db:"event_type"`
	ProductID string    `db:"product_id"`
	Payload   []byte    `db:"payload"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`

	ProcessedAt *time.Time `db:"processed_at"`
}
