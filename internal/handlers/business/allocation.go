package business

import (
	"fmt"
	"time"

	"investcontrol/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DeclareSale runs the sale waterfall for a project:
//
//	gross profit -> admin cost -> net profit -> per-participant share
//	-> agent commission split -> persisted deltas + log chain
//
// Each value is rounded to 2 decimals immediately after it is computed.
// The gross basis is the capital target when deductOutstanding is set
// (the default), otherwise the cash actually paid in by investors.
// A negative gross profit (a loss) flows through unclamped.
//
// All writes happen in one transaction guarded by the project version;
// concurrent sales on the same project are additionally serialized by an
// in-process lock so no waterfall reads figures another one is moving.
func DeclareSale(db *gorm.DB, projectID uint, saleAmount float64, deductOutstanding bool, period string) (*models.Project, error) {
	if !IsFiniteAmount(saleAmount) || saleAmount <= 0 {
		return nil, fmt.Errorf("%w: sale amount must be a positive finite number, got %v", ErrInvalidAmount, saleAmount)
	}
	if err := ValidatePeriod(period); err != nil {
		return nil, err
	}

	unlock := lockProject(projectID)
	defer unlock()

	err := db.Transaction(func(tx *gorm.DB) error {
		project, err := loadProject(tx, projectID)
		if err != nil {
			return err
		}
		version := project.Version

		sale := Round2(saleAmount)
		basis := Round2(project.ProjectAmount)
		if !deductOutstanding {
			basis = Round2(project.TotalAmountPaid)
		}
		grossProfit := Round2(sale - basis)
		adminCost := Round2(grossProfit * project.AdminCostRate / 100)
		netProfit := Round2(grossProfit - adminCost)

		netLog, err := appendSaleChain(tx, project, sale, grossProfit, adminCost, netProfit, period)
		if err != nil {
			return err
		}

		var participants []models.Participant
		if err := tx.Where("project_id = ? AND status = ?", projectID, "active").Find(&participants).Error; err != nil {
			return err
		}

		for i := range participants {
			if err := distributeToParticipant(tx, project, &participants[i], netProfit, netLog.LogID, period); err != nil {
				return err
			}
		}

		return commitProject(tx, projectID, version, map[string]interface{}{
			"sale_amount": sale,
		})
	})
	if err != nil {
		return nil, err
	}

	logrus.Infof("sale declared: project=%d sale=%.2f period=%s", projectID, saleAmount, period)

	var project models.Project
	if err := db.First(&project, projectID).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// appendSaleChain writes the four ordered sub-entries of one sale event
// onto the project-level entry: saleDeclared, grossProfit, adminCost,
// netProfit, each referencing the sub-entry that produced it. Identifiers
// are assigned in memory so the chain is built before a single insert.
func appendSaleChain(tx *gorm.DB, project *models.Project, sale, grossProfit, adminCost, netProfit float64, period string) (*models.LedgerLog, error) {
	entry, err := getOrCreateEntry(tx, project.ID, nil, period)
	if err != nil {
		return nil, err
	}
	seq, err := nextLogSeq(tx, entry.ID)
	if err != nil {
		return nil, err
	}

	saleLog := newLog(models.LogSaleDeclared, "CMV / SALE", "", map[string]interface{}{
		"amount":   sale,
		"currency": project.CurrencyType,
	})
	grossLog := newLog(models.LogGrossProfit,
		fmt.Sprintf("Gross Profit for sale (RefID: %s)", saleLog.LogID),
		saleLog.LogID, map[string]interface{}{
			"amount":      grossProfit,
			"sale_amount": sale,
			"currency":    project.CurrencyType,
		})
	adminLog := newLog(models.LogAdminCostDeclared,
		fmt.Sprintf("Admin Cost %v%% for %s (RefID: %s)", project.AdminCostRate, project.Title, grossLog.LogID),
		grossLog.LogID, map[string]interface{}{
			"project_id":      project.ID,
			"admin_cost_rate": project.AdminCostRate,
			"amount":          adminCost,
			"cmv":             sale,
			"currency":        project.CurrencyType,
		})
	netLog := newLog(models.LogNetProfit,
		fmt.Sprintf("Net Profit Allocated for %s (RefID: %s)", project.Title, adminLog.LogID),
		adminLog.LogID, map[string]interface{}{
			"amount":   netProfit,
			"currency": project.CurrencyType,
		})

	chain := []*models.LedgerLog{&saleLog, &grossLog, &adminLog, &netLog}
	base := time.Now()
	for i, l := range chain {
		l.EntryID = &entry.ID
		l.Seq = seq + i
		// keep the chain strictly ordered even within one clock tick
		l.CreatedAt = base.Add(time.Duration(i+1) * time.Millisecond)
		if err := tx.Create(l).Error; err != nil {
			return nil, err
		}
	}
	return &netLog, nil
}

// distributeToParticipant allocates one active participant's slice of the
// net profit, splits off the agent commission when one applies, and
// appends the investor-level (and agent-level) sub-entries.
func distributeToParticipant(tx *gorm.DB, project *models.Project, participant *models.Participant, netProfit float64, netLogID, period string) error {
	sharePercent := participant.ProjectShare
	rawShareAmount := Round2(netProfit * sharePercent / 100)

	investor, err := loadUser(tx, participant.InvestorID)
	if err != nil {
		return err
	}

	commission := 0.0
	finalPayout := rawShareAmount
	var agent *models.UserAccount
	if investor.AgentID != nil && participant.AgentCommissionRate > 0 {
		a, err := loadUser(tx, *investor.AgentID)
		if err != nil {
			return err
		}
		agent = a
		// Commission is cut from the investor's own share of the net profit.
		commission = Round2(rawShareAmount * participant.AgentCommissionRate / 100)
		finalPayout = Round2(rawShareAmount - commission)
	}

	participant.TotalDue = Round2(participant.TotalDue + finalPayout)

	// Re-pin the principal to accrued due once per month, but never in the
	// month the position was opened or last re-pinned.
	creationPeriod := PeriodOf(participant.CreatedAt)
	lastUpdatePeriod := ""
	if participant.AmountLastUpdatedAt != nil {
		lastUpdatePeriod = PeriodOf(*participant.AmountLastUpdatedAt)
	}
	if period != creationPeriod && period != lastUpdatePeriod {
		stamp := PeriodStart(period)
		participant.Amount = participant.TotalDue
		participant.AmountLastUpdatedAt = &stamp
	}
	if err := tx.Save(participant).Error; err != nil {
		return err
	}

	entry, err := getOrCreateEntry(tx, project.ID, &participant.InvestorID, period)
	if err != nil {
		return err
	}
	seq, err := nextLogSeq(tx, entry.ID)
	if err != nil {
		return err
	}

	if commission > 0 {
		commissionLog := newLog(models.LogCommissionCalc,
			fmt.Sprintf("Commission distributed to Agent %s from %s's profit", agent.Name, investor.Name),
			netLogID, map[string]interface{}{
				"agent_id":           agent.ID,
				"agent_name":         agent.Name,
				"investor_id":        investor.ID,
				"investor_name":      investor.Name,
				"amount":             commission,
				"share_percentage":   sharePercent,
				"investor_netprofit": finalPayout,
				"project_id":         project.ID,
				"project_title":      project.Title,
			})
		commissionLog.EntryID = &entry.ID
		commissionLog.Seq = seq
		seq++
		if err := tx.Create(&commissionLog).Error; err != nil {
			return err
		}

		if err := upsertAgentRecords(tx, project, investor, agent, commission, commissionLog, period); err != nil {
			return err
		}
	}

	profitMessage := fmt.Sprintf("Profit Distributed to %s for %v%% share", investor.Name, sharePercent)
	if commission > 0 {
		profitMessage += fmt.Sprintf(" (after %.2f agent comm.)", commission)
	}
	profitLog := newLog(models.LogProfitDistributed, profitMessage, netLogID, map[string]interface{}{
		"net_profit":       netProfit,
		"amount":           finalPayout,
		"raw_share":        rawShareAmount,
		"agent_deduction":  commission,
		"share_percentage": sharePercent,
		"investor_name":    investor.Name,
	})
	profitLog.EntryID = &entry.ID
	profitLog.Seq = seq
	if err := tx.Create(&profitLog).Error; err != nil {
		return err
	}

	return tx.Model(entry).Updates(map[string]interface{}{
		"profit":            Round2(entry.Profit + finalPayout),
		"monthly_total_due": Round2(entry.MonthlyTotalDue + finalPayout),
		"status":            models.StatusPartial,
	}).Error
}

// upsertAgentRecords maintains the per-period agent transaction and the
// running (agent, investor) commission summary for one commission cut.
func upsertAgentRecords(tx *gorm.DB, project *models.Project, investor, agent *models.UserAccount, commission float64, commissionLog models.LedgerLog, period string) error {
	var txn models.AgentTransaction
	res := tx.Where("project_id = ? AND investor_id = ? AND agent_id = ? AND month = ?",
		project.ID, investor.ID, agent.ID, period).Limit(1).Find(&txn)
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		txn = models.AgentTransaction{
			ProjectID:     project.ID,
			InvestorID:    investor.ID,
			AgentID:       agent.ID,
			Month:         period,
			CommissionDue: commission,
			Profit:        commission,
			Status:        models.StatusDue,
		}
		if err := tx.Create(&txn).Error; err != nil {
			return err
		}
	} else {
		txn.CommissionDue = Round2(txn.CommissionDue + commission)
		txn.Profit = Round2(txn.Profit + commission)
		switch {
		case txn.CommissionDue == 0:
			txn.Status = models.StatusPaid
		case txn.CommissionPaid == 0:
			txn.Status = models.StatusDue
		default:
			txn.Status = models.StatusPartial
		}
		if err := tx.Save(&txn).Error; err != nil {
			return err
		}
	}

	agentLog := commissionLog
	agentLog.ID = 0
	agentLog.EntryID = nil
	agentLog.AgentTxnID = &txn.ID
	agentLog.LogID = uuid.NewString()
	seq, err := nextAgentLogSeq(tx, txn.ID)
	if err != nil {
		return err
	}
	agentLog.Seq = seq
	if err := tx.Create(&agentLog).Error; err != nil {
		return err
	}

	var summary models.AgentCommission
	res = tx.Where("agent_id = ? AND investor_id = ?", agent.ID, investor.ID).Limit(1).Find(&summary)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		summary = models.AgentCommission{
			AgentID:            agent.ID,
			InvestorID:         investor.ID,
			TotalCommissionDue: commission,
		}
		return tx.Create(&summary).Error
	}
	return tx.Model(&summary).
		Update("total_commission_due", Round2(summary.TotalCommissionDue+commission)).Error
}

func nextAgentLogSeq(tx *gorm.DB, agentTxnID uint) (int, error) {
	var count int64
	if err := tx.Model(&models.LedgerLog{}).Where("agent_txn_id = ?", agentTxnID).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count) + 1, nil
}
