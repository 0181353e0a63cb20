package models

import "time"

type Slide struct {
	ID          int       `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description *string   `json:"description,omitempty" db:"description"`
	ImageKey    *string   `json:"-" db:"image_key"`
	ImageURL    *string   `json:"image_url,omitempty" db:"-"`
	OrderIndex  int       `json:"order_index" db:"order_index"`
	MatchID     *int      `json:"match_id,omitempty" db:"match_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
