// AngelaMos | 2026
// entity.go

package task

import (
	"time"
)

const DateLayout = "2006-01-02"

const (
	StatusAvailable = "available"
	CategoryGeneral = "general"
)

type Task struct {
	ID         int64     `db:"id"`
	Title      string    `db:"title"`
	Price      int64     `db:"price"`
	ImageData  string    `db:"image_data"`
	Category   string    `db:"category"`
	Status     string    `db:"status"`
	UploadDate time.Time `db:"upload_date"`
	CreatedAt  time.Time `db:"created_at"`
}
