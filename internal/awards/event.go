package awards

import (
	"time"

	"github.com/google/uuid"
)

type Event struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Person struct {
	ID   uuid.UUID `db:"id"`
	Name string    `db:"name"`
}

type Work struct {
	ID    uuid.UUID `db:"id"`
	Title string    `db:"title"`
}
