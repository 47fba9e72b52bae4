// internal/models/wish.go
package models

import "time"

// Wish 表示许愿池中一条已接受的愿望及石狗的回应
type Wish struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Blessing  string    `json:"blessing"`
	Provider  string    `json:"provider,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
