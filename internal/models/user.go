package models

type User struct {
	BaseModel
	Username     string `gorm:"not null" json:"username"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
}
