package models

import (
	"encoding/json"
	"time"
)

// Entry / payment statuses
const (
	StatusDue     = "due"
	StatusPartial = "partial"
	StatusPaid    = "paid"
)

// Ledger log types
const (
	LogSaleDeclared      = "saleDeclared"
	LogGrossProfit       = "grossProfit"
	LogAdminCostDeclared = "adminCostDeclared"
	LogNetProfit         = "netProfit"
	LogProfitDistributed = "profitDistributed"
	LogCommissionCalc    = "commissionCalculated"
	LogInvestmentUpdated = "investmentUpdated"
	LogInstallment       = "installment"
	LogProjectClosed     = "projectClosed"
)

// Payment log transaction types
const (
	PaymentInvestment        = "investment"
	PaymentInvestmentUpdated = "investmentUpdated"
	PaymentProfit            = "profitPayment"
	PaymentInstallment       = "installment"
	PaymentCloseProject      = "closeProject"
	PaymentCommission        = "commissionPayment"
)

// LedgerEntry 每个 (项目, 投资人, 月份) 一条；InvestorID 为空表示项目级全局账目
type LedgerEntry struct {
	ID               uint      `gorm:"primarykey" json:"id"`
	ProjectID        uint      `gorm:"not null;index:idx_entry_project_investor_month,unique" json:"project_id"`
	InvestorID       *uint     `gorm:"index:idx_entry_project_investor_month,unique" json:"investor_id"`
	Month            string    `gorm:"size:7;not null;index:idx_entry_project_investor_month,unique" json:"month"` // "YYYY-MM"
	Profit           float64   `gorm:"default:0" json:"profit"`
	MonthlyTotalDue  float64   `gorm:"default:0" json:"monthly_total_due"`
	MonthlyTotalPaid float64   `gorm:"default:0" json:"monthly_total_paid"`
	Status           string    `gorm:"size:16;not null;default:'due'" json:"status"`
	CreatedAt        time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Logs        []LedgerLog  `gorm:"foreignKey:EntryID" json:"logs,omitempty"`
	PaymentLogs []PaymentLog `gorm:"foreignKey:EntryID" json:"payment_log,omitempty"`
}

func (LedgerEntry) TableName() string {
	return "ledger_entry"
}

// LedgerLog is one immutable typed sub-entry of a ledger entry. LogID is
// assigned in memory before the batch is persisted so that RefID can point
// at a sibling written in the same unit of work. Never updated after insert.
type LedgerLog struct {
	ID         uint            `gorm:"primarykey" json:"id"`
	EntryID    *uint           `gorm:"index" json:"entry_id"`
	AgentTxnID *uint           `gorm:"index" json:"agent_txn_id"`
	LogID      string          `gorm:"size:36;not null;uniqueIndex" json:"log_id"`
	RefID      string          `gorm:"size:36" json:"ref_id"` // LogID of the sub-entry that produced this one
	Seq        int             `gorm:"not null" json:"seq"`
	Type       string          `gorm:"size:32;not null" json:"type"`
	Message    string          `gorm:"size:512" json:"message"`
	Metadata   json.RawMessage `gorm:"type:jsonb" json:"metadata"`
	CreatedAt  time.Time       `json:"created_at" gorm:"autoCreateTime"`
}

func (LedgerLog) TableName() string {
	return "ledger_log"
}

// PaymentLog 记录资金流水（出资、分期、分润支付、结项）
type PaymentLog struct {
	ID              uint            `gorm:"primarykey" json:"id"`
	EntryID         uint            `gorm:"not null;index" json:"entry_id"`
	TransactionType string          `gorm:"size:32;not null" json:"transaction_type"`
	DueAmount       float64         `gorm:"not null;default:0" json:"due_amount"`
	PaidAmount      float64         `gorm:"not null;default:0" json:"paid_amount"`
	Status          string          `gorm:"size:16;not null" json:"status"`
	Note            string          `gorm:"size:256" json:"note"`
	Metadata        json.RawMessage `gorm:"type:jsonb" json:"metadata"`
	CreatedAt       time.Time       `json:"created_at" gorm:"autoCreateTime"`
}

func (PaymentLog) TableName() string {
	return "payment_log"
}
