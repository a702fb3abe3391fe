package models

import (
	"encoding/json"
	"time"
)

// Share denominator policies. "capital" pins shares to the committed
// capital target, "paid_in" to the cash actually collected.
const (
	ShareBasisCapital = "capital"
	ShareBasisPaidIn  = "paid_in"
)

// Project is a pooled investment vehicle. Aggregates (TotalAmountPaid)
// are derived from participants but stored here for cheap reads; the
// ledger core is the only writer.
type Project struct {
	ID                uint            `gorm:"primarykey" json:"id"`
	Title             string          `gorm:"size:128;not null" json:"title"`
	Details           string          `gorm:"type:text" json:"details"`
	Image             string          `gorm:"size:256" json:"image"`
	Documents         json.RawMessage `gorm:"type:jsonb" json:"documents"`
	CurrencyType      string          `gorm:"size:8;not null;default:'GBP'" json:"currency_type"`
	ProjectAmount     float64         `gorm:"not null;default:0" json:"project_amount"`
	SaleAmount        float64         `gorm:"default:0" json:"sale_amount"`
	AdminCostRate     float64         `gorm:"default:0" json:"admin_cost_rate"` // percentage
	TotalAmountPaid   float64         `gorm:"default:0" json:"total_amount_paid"`
	ProjectDuration   int             `gorm:"default:0" json:"project_duration"`
	InstallmentNumber int             `gorm:"default:0" json:"installment_number"`
	ShareBasis        string          `gorm:"size:16;not null;default:'capital'" json:"share_basis"`
	Status            string          `gorm:"size:16;not null;default:'active'" json:"status"` // 'active' or 'block'
	Version           uint            `gorm:"not null;default:0" json:"version"`
	CreatedAt         time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Project) TableName() string {
	return "project"
}

// ProjectStatement 每月项目结算汇总，由 worker 异步生成
type ProjectStatement struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	ProjectID  uint      `gorm:"not null;index:idx_statement_project_month,unique" json:"project_id"`
	Month      string    `gorm:"size:7;not null;index:idx_statement_project_month,unique" json:"month"`
	TotalDue   float64   `gorm:"default:0" json:"total_due"`
	TotalPaid  float64   `gorm:"default:0" json:"total_paid"`
	Profit     float64   `gorm:"default:0" json:"profit"`
	EntryCount int       `gorm:"default:0" json:"entry_count"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (ProjectStatement) TableName() string {
	return "project_statement"
}
