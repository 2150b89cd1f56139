package dto

import "time"

type CreateClientRequest struct {
	FullName     string     `json:"full_name" validate:"required,min=2"`
	Phone        string     `json:"phone"`
	Email        string     `json:"email" validate:"omitempty,email"`
	DateOfBirth  *time.Time `json:"date_of_birth"`
	Address      string     `json:"address"`
	Notes        string     `json:"notes"`
	NextFollowUp *time.Time `json:"next_follow_up"`
}

type UpdateClientRequest struct {
	FullName     *string    `json:"full_name" validate:"omitempty,min=2"`
	Phone        *string    `json:"phone"`
	Email        *string    `json:"email" validate:"omitempty,email"`
	DateOfBirth  *time.Time `json:"date_of_birth"`
	Address      *string    `json:"address"`
	Notes        *string    `json:"notes"`
	NextFollowUp *time.Time `json:"next_follow_up"`
}
