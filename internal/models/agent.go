package models

import "time"

// AgentTransaction 每个 (项目, 投资人, 代理, 月份) 的佣金账目
// Mirrors the investor ledger entry; its sub-entry log rows live in
// ledger_log via AgentTxnID.
type AgentTransaction struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	ProjectID      uint      `gorm:"not null;index:idx_agent_txn_key,unique" json:"project_id"`
	InvestorID     uint      `gorm:"not null;index:idx_agent_txn_key,unique" json:"investor_id"`
	AgentID        uint      `gorm:"not null;index:idx_agent_txn_key,unique" json:"agent_id"`
	Month          string    `gorm:"size:7;not null;index:idx_agent_txn_key,unique" json:"month"`
	CommissionDue  float64   `gorm:"default:0" json:"commission_due"`
	CommissionPaid float64   `gorm:"default:0" json:"commission_paid"`
	Profit         float64   `gorm:"default:0" json:"profit"`
	Status         string    `gorm:"size:16;not null;default:'due'" json:"status"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Logs []LedgerLog `gorm:"foreignKey:AgentTxnID" json:"logs,omitempty"`
}

func (AgentTransaction) TableName() string {
	return "agent_transaction"
}

// AgentCommission is the running (agent, investor) commission summary.
// Append-only accumulation; only explicit payment recording reduces it.
type AgentCommission struct {
	ID                  uint      `gorm:"primarykey" json:"id"`
	AgentID             uint      `gorm:"not null;index:idx_agent_commission_pair,unique" json:"agent_id"`
	InvestorID          uint      `gorm:"not null;index:idx_agent_commission_pair,unique" json:"investor_id"`
	TotalCommissionDue  float64   `gorm:"default:0" json:"total_commission_due"`
	TotalCommissionPaid float64   `gorm:"default:0" json:"total_commission_paid"`
	CreatedAt           time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt           time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (AgentCommission) TableName() string {
	return "agent_commission"
}
