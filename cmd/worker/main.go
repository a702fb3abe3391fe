package main

import (
	"encoding/json"
	"flag"
	"log"

	"investcontrol/internal/handlers/business"
	"investcontrol/pkg/config"

	logrus "github.com/sirupsen/logrus"
)

// StatementRefreshMessage asks the worker to rebuild one monthly rollup
type StatementRefreshMessage struct {
	ProjectID uint   `json:"project_id"`
	Month     string `json:"month"`
}

func main() {
	purge := flag.Bool("purge", false, "drop queued messages before consuming")
	flag.Parse()

	// Initialize logger
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	config.LoadEnv()

	// Initialize database
	config.InitDB()

	// Initialize RabbitMQ
	config.InitRabbitMQ()
	defer config.RabbitMQ.Close()

	if *purge {
		for _, queue := range []string{config.StatementRefreshQueue, config.LedgerEventsQueue} {
			if err := config.PurgeQueue(queue); err != nil {
				logrus.Warnf("Failed to purge queue %s: %v", queue, err)
			}
		}
	}

	refreshConsumer, err := config.NewConsumer(config.StatementRefreshQueue)
	if err != nil {
		logrus.Fatal("Failed to create statement refresh consumer: ", err)
	}
	defer refreshConsumer.Close()

	eventConsumer, err := config.NewConsumer(config.LedgerEventsQueue)
	if err != nil {
		logrus.Fatal("Failed to create ledger events consumer: ", err)
	}
	defer eventConsumer.Close()

	// Ledger events are consumed for the audit log only; the ledger
	// itself was already written by the API before publishing
	go func() {
		err := eventConsumer.Consume(func(msg []byte) error {
			var event business.LedgerEvent
			if err := json.Unmarshal(msg, &event); err != nil {
				logrus.Errorf("Failed to unmarshal ledger event: %v", err)
				return err
			}

			logFields := logrus.Fields{
				"event_type": event.Type,
				"project_id": event.ProjectID,
				"month":      event.Month,
				"amount":     event.Amount,
			}
			if event.InvestorID != 0 {
				logFields["investor_id"] = event.InvestorID
			}
			if event.Currency != "" {
				logFields["currency"] = event.Currency
			}
			logrus.WithFields(logFields).Info("Ledger event recorded")

			// A mutation invalidates the month's rollup, rebuild it inline
			if event.Month != "" {
				if _, err := business.BuildStatement(config.DB, event.ProjectID, event.Month); err != nil {
					logrus.Errorf("Failed to rebuild statement for project %d month %s: %v",
						event.ProjectID, event.Month, err)
					return err
				}
			}
			return nil
		})
		if err != nil {
			logrus.Errorf("Ledger events consumer stopped: %v", err)
		}
	}()

	logrus.Info("Ledger worker started, waiting for messages...")

	// Scheduled refreshes arrive from the cron publisher
	err = refreshConsumer.Consume(func(msg []byte) error {
		var refreshMsg StatementRefreshMessage
		if err := json.Unmarshal(msg, &refreshMsg); err != nil {
			logrus.Errorf("Failed to unmarshal refresh message: %v", err)
			return err
		}

		logrus.Infof("Received statement refresh request: %+v", refreshMsg)

		if _, err := business.BuildStatement(config.DB, refreshMsg.ProjectID, refreshMsg.Month); err != nil {
			logrus.Errorf("Failed to build statement for project %d month %s: %v",
				refreshMsg.ProjectID, refreshMsg.Month, err)
			return err
		}

		logrus.Infof("Statement rebuilt for project %d month %s", refreshMsg.ProjectID, refreshMsg.Month)
		return nil
	})

	if err != nil {
		log.Fatal("Failed to start consumer: ", err)
	}
}
