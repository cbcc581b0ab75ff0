package models

import (
	"fmt"
	"time"
)

type UserRole int

const (
	RoleUser UserRole = iota
	RoleManager
	RoleAdmin
)

// Valid reports whether r is one of the three known roles.
func (r UserRole) Valid() bool {
	return r >= RoleUser && r <= RoleAdmin
}

// AtLeast reports whether r grants the privileges of min.
func (r UserRole) AtLeast(min UserRole) bool {
	return r >= min
}

type User struct {
	UserID    string `json:"user_id" gorm:"primaryKey;size:16"`
	Email     string `json:"email" gorm:"uniqueIndex;not null;size:254"`
	Password  string `json:"-" gorm:"not null;size:255"`
	FirstName string `json:"first_name" gorm:"size:32"`
	LastName  string `json:"last_name" gorm:"size:32"`

	// Vitals
	Weight        *float64 `json:"weight"`
	BodyFat       *float64 `json:"body_fat"`
	BloodPressure *int     `json:"blood_pressure"`
	HeartRate     *int     `json:"heart_rate"`
	OxygenLevel   *int     `json:"oxygen_level"`

	Role        UserRole  `json:"role" gorm:"type:smallint;default:0"`
	DateOfBirth time.Time `json:"date_of_birth" gorm:"type:date"`

	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"autoUpdateTime"`
	LastSeenAt time.Time `json:"last_seen_at" gorm:"autoCreateTime"`

	// Relations
	Profile     *Profile     `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Submissions []Submission `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (User) TableName() string {
	return "users"
}

// Token is the credential handed out on register and login.
func (u *User) Token() string {
	return fmt.Sprintf("@%s:%s", u.UserID, u.Password)
}
