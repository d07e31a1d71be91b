package models

// User is a registered account. Password holds the bcrypt hash only.
type User struct {
	Model
	Name     string `gorm:"not null" json:"name"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Mobile   string `gorm:"uniqueIndex;not null" json:"mobile"`
	Password string `gorm:"not null" json:"-"`
}
