package models

import "time"

// Todo is one row of the todos table. The store assigns
// the id at insert time; ids are monotonic, so ascending
// id order is creation order.
type Todo struct {
	ID         int64
	UserID     string
	Task       string
	IsComplete bool
	InsertedAt time.Time
}
