package models

import "time"

// Participant 一个投资人在一个项目中的持仓
// One record per (project, investor). Amount is the committed principal,
// ProjectShare the percentage claim on distributed profit. ProjectShare
// is a derived value, re-pinned whenever the project denominator moves.
type Participant struct {
	ID                  uint       `gorm:"primarykey" json:"id"`
	ProjectID           uint       `gorm:"not null;index:idx_participant_project_investor,unique" json:"project_id"`
	InvestorID          uint       `gorm:"not null;index:idx_participant_project_investor,unique" json:"investor_id"`
	Amount              float64    `gorm:"not null;default:0" json:"amount"`
	ProjectShare        float64    `gorm:"default:0" json:"project_share"` // percentage, 2dp
	TotalDue            float64    `gorm:"default:0" json:"total_due"`
	TotalPaid           float64    `gorm:"default:0" json:"total_paid"`
	AgentCommissionRate float64    `gorm:"default:0" json:"agent_commission_rate"` // percentage
	InstallmentNumber   int        `gorm:"default:0" json:"installment_number"`
	InstallmentPaid     float64    `gorm:"column:installment_paid_amount;default:0" json:"installment_paid_amount"`
	Status              string     `gorm:"size:16;not null;default:'active'" json:"status"` // 'active' or 'block'
	AmountLastUpdatedAt *time.Time `json:"amount_last_updated_at"`
	CreatedAt           time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt           time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Participant) TableName() string {
	return "participant"
}
