package model

import "time"

// Category groups posts. Any authenticated user may create one; only admins
// may delete one (which cascades to every post under it).
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedBy int64     `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}
