package comment

import "time"

// Comment represents a row in the comments table.
type Comment struct {
	ID        int64
	TaskID    int64
	UserID    int64
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time

	AuthorName string // populated on reads
}
