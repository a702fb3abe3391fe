package models

import "time"

// UserAccount is the minimal identity record the ledger consumes:
// a display name and, for investors, the referring agent. Account
// management itself lives in another service.
type UserAccount struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Role      string    `gorm:"size:16;not null;default:'investor'" json:"role"` // 'admin', 'agent' or 'investor'
	AgentID   *uint     `gorm:"index" json:"agent_id"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (UserAccount) TableName() string {
	return "user_account"
}
