package domain

import "time"

// Team represents an organization sharing a treasury
type Team struct {
	ID                int       `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	BankAddress       string    `json:"bank_address"`
	ApprovalThreshold int       `json:"approval_threshold"`
	MemberCount       int       `json:"member_count"`
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
