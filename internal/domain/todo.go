package domain

import "time"

// Todo is a single task owned by exactly one user.
type Todo struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" db:"id"`
	Title       string    `gorm:"not null" db:"title"`
	Description *string   `db:"description"`
	Completed   bool      `gorm:"not null" db:"completed"`
	CreatedAt   time.Time `gorm:"not null;index" db:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" db:"updated_at"`
	UserID      string    `gorm:"type:varchar(36);not null;index" db:"user_id"`
	User        *User     `gorm:"constraint:OnDelete:CASCADE" db:"-"`
}

func (Todo) TableName() string {
	return "todos"
}

// TodoPatch carries the fields of a sparse update. A nil pointer means the
// field was not supplied; DescriptionSet distinguishes "clear the
// description" (Description == nil) from "leave it alone".
type TodoPatch struct {
	Title          *string
	Description    *string
	DescriptionSet bool
	Completed      *bool
}

// Column is a single column assignment of an UPDATE statement.
type Column struct {
	Name  string
	Value any
}

// Columns returns the assignments the patch implies, in a stable order.
// updated_at is always included.
func (p TodoPatch) Columns(now time.Time) []Column {
	cols := make([]Column, 0, 4)
	if p.Title != nil {
		cols = append(cols, Column{Name: "title", Value: *p.Title})
	}
	if p.DescriptionSet {
		cols = append(cols, Column{Name: "description", Value: p.Description})
	}
	if p.Completed != nil {
		cols = append(cols, Column{Name: "completed", Value: *p.Completed})
	}
	return append(cols, Column{Name: "updated_at", Value: now})
}
