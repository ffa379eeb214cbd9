package models

import "time"

type User struct {
	ID            string
	Email         string
	Password      string
	EmailVerified bool
	VerifyToken   string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
