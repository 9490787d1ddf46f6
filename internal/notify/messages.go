package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"kharcha/internal/core"
)

// AlertLevel says how far through the monthly budget the user is.
type AlertLevel string

const (
	// LevelWarning fires once monthly spend crosses 80% of the budget.
	LevelWarning AlertLevel = "warning"
	// LevelExceeded fires once monthly spend reaches or passes the budget.
	LevelExceeded AlertLevel = "exceeded"
)

// BudgetAlert is the message published when a new expense pushes the user's
// monthly spend over a budget threshold.
type BudgetAlert struct {
	UserID       int64      `json:"user_id"`
	Username     string     `json:"username"`
	Level        AlertLevel `json:"level"`
	MonthlySpend core.Money `json:"monthly_spend"`
	Budget       core.Money `json:"budget"`
	Timestamp    time.Time  `json:"timestamp"`
}

func (a *BudgetAlert) ToJSON() ([]byte, error) {
	return json.Marshal(a)
}

func BudgetAlertFromJSON(data []byte) (*BudgetAlert, error) {
	var a BudgetAlert
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("unmarshal budget alert: %w", err)
	}
	return &a, nil
}

const warningThreshold = 0.8

// EvaluateBudget decides whether spend against budget warrants an alert.
// A zero or unset budget never alerts.
func EvaluateBudget(spend, budget core.Money) (AlertLevel, bool) {
	if budget.Paise <= 0 {
		return "", false
	}
	if spend.Paise >= budget.Paise {
		return LevelExceeded, true
	}
	if float64(spend.Paise) >= float64(budget.Paise)*warningThreshold {
		return LevelWarning, true
	}
	return "", false
}
