package Models

import "gorm.io/gorm"

// Permission levels used by middleware.Verify.
const (
	PermissionOperador   = 1
	PermissionSupervisor = 2
	PermissionAdmin      = 3
)

type User struct {
	Id       uint   `json:"id" gorm:"primaryKey"`
	Username string `json:"username" gorm:"uniqueIndex;not null"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password []byte `json:"-"`
	// 1 = operador, 2 = supervisor, 3 = admin
	Permission int `json:"permission"`
}

// Operador links a field worker to its login user, one-to-one.
type Operador struct {
	gorm.Model
	UserID uint `json:"user_id" gorm:"uniqueIndex;not null"`
	User   User `json:"user" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (Operador) TableName() string {
	return "operadores"
}
