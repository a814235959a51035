package domain

import "time"

// User is the owner of todos. Rows are written by the identity provider's
// registration flow; this service only looks them up by email.
type User struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" db:"id"`
	Email     string    `gorm:"uniqueIndex;not null" db:"email"`
	Name      *string   `db:"name"`
	CreatedAt time.Time `gorm:"not null" db:"created_at"`
	UpdatedAt time.Time `gorm:"not null" db:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
