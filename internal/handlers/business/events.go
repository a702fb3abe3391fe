package business

// Ledger event types published after a unit of work commits.
const (
	EventSaleDeclared     = "sale_declared"
	EventCapitalRaised    = "capital_raised"
	EventInstallmentPaid  = "installment_paid"
	EventContributionMade = "contribution_made"
)

// LedgerEvent is the post-commit notification fanned out to the message
// queue and the websocket feed. Informational only: the ledger itself is
// already durable when one of these goes out.
type LedgerEvent struct {
	Type       string  `json:"type"`
	ProjectID  uint    `json:"project_id"`
	InvestorID uint    `json:"investor_id,omitempty"`
	Month      string  `json:"month"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
}
