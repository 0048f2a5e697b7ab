package entity

import "time"

type EmailVerification struct {
	ID        uint64
	SeniorID  uint64
	Code      string
	CreatedAt time.Time
}
