package models

import "time"

// FreeUploadLimit is the lifetime number of analyses a free user gets.
const FreeUploadLimit = 1

type Plan string

const (
	PlanFree Plan = "FREE"
	PlanPro  Plan = "PRO"
)

type User struct {
	Uid             string     `db:"uid" json:"uid"`
	Email           string     `db:"email" json:"email"`
	Pro             bool       `db:"pro" json:"pro"`
	Plan            Plan       `db:"plan" json:"plan"`
	SubID           string     `db:"sub_id" json:"subId,omitempty"`
	SubStart        *time.Time `db:"sub_start" json:"subStart,omitempty"`
	FreeUploadsUsed int        `db:"free_uploads_used" json:"freeUploadsUsed"`
}

// MayAnalyze reports whether the user is entitled to run another analysis.
// Pro users are unlimited; free users get FreeUploadLimit analyses ever.
func (u User) MayAnalyze() bool {
	if u.Pro {
		return true
	}
	return u.FreeUploadsUsed < FreeUploadLimit
}

// FreeUploadsRemaining is only meaningful while the user is on the free tier.
func (u User) FreeUploadsRemaining() int {
	remaining := FreeUploadLimit - u.FreeUploadsUsed
	if remaining < 0 {
		return 0
	}
	return remaining
}
