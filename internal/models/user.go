package models

import "time"

// User is a registered account.
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"size:100;not null" json:"username"`
	Email        string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"column:hashed_password;size:250;not null" json:"-"`
	// Password is the legacy plaintext column. It stays empty unless the
	// legacy_plaintext_passwords flag is on.
	Password  string    `gorm:"size:250" json:"-"`
	CreatedAt time.Time `gorm:"column:created_on" json:"created_at"`
}

func (User) TableName() string {
	return "user"
}
