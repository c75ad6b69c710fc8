package Models

import (
	"time"
)

const (
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

// User mirrors the users collection. The primary key is exposed as "uid"
// to keep the stored field names stable.
type User struct {
	ID          uint      `json:"uid" gorm:"primaryKey"`
	Email       string    `json:"email" gorm:"uniqueIndex;not null"`
	Password    []byte    `json:"-"`
	DisplayName string    `json:"displayName"`
	Role        string    `json:"role" gorm:"not null;default:employee"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (User) TableName() string {
	return "users"
}

// ValidRole reports whether role is one of the enumerated roles.
func ValidRole(role string) bool {
	return role == RoleManager || role == RoleEmployee
}
