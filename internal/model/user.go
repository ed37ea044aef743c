package model

const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

type User struct {
	ID   string `gorm:"column:id;primaryKey;type:varchar(64)"`
	Role string `gorm:"column:role;type:varchar(16);not null"`
}

func (User) TableName() string {
	return "users"
}
