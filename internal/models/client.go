package models

import "time"

// Client is a policyholder contact owned by one agent.
type Client struct {
	BaseModel
	UserID       string     `gorm:"type:uuid;not null;index" json:"user_id"`
	FullName     string     `gorm:"not null" json:"full_name"`
	Phone        string     `json:"phone"`
	Email        string     `json:"email"`
	DateOfBirth  *time.Time `json:"date_of_birth,omitempty"`
	Address      string     `json:"address"`
	Notes        string     `json:"notes"`
	NextFollowUp *time.Time `gorm:"index" json:"next_follow_up,omitempty"`

	Policies []Policy `gorm:"foreignKey:ClientID" json:"policies,omitempty"`
}
