package models

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"unique;not null"          json:"username"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Salt         string `gorm:"not null"                 json:"-"`
	IsAdmin      bool   `gorm:"default:false"            json:"is_admin"`
}

type Todo struct {
	ID     uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name   string `gorm:"not null"                 json:"name"`
	Status bool   `gorm:"default:false"            json:"status"`
}
