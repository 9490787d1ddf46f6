package notify

import (
	"context"
	"testing"

	"kharcha/internal/core"
)

func TestEvaluateBudget(t *testing.T) {
	tests := []struct {
		name      string
		spend     int64
		budget    int64
		wantLevel AlertLevel
		wantAlert bool
	}{
		{"no budget set", 500000, 0, "", false},
		{"well under budget", 100000, 1000000, "", false},
		{"just under warning threshold", 799999, 1000000, "", false},
		{"at warning threshold", 800000, 1000000, LevelWarning, true},
		{"between warning and limit", 950000, 1000000, LevelWarning, true},
		{"at budget", 1000000, 1000000, LevelExceeded, true},
		{"over budget", 1200000, 1000000, LevelExceeded, true},
		{"negative budget", 100, -500, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, ok := EvaluateBudget(core.Money{Paise: tt.spend}, core.Money{Paise: tt.budget})
			if ok != tt.wantAlert {
				t.Fatalf("EvaluateBudget() alert = %v, want %v", ok, tt.wantAlert)
			}
			if level != tt.wantLevel {
				t.Errorf("EvaluateBudget() level = %q, want %q", level, tt.wantLevel)
			}
		})
	}
}

func TestBudgetAlertRoundTrip(t *testing.T) {
	alert := &BudgetAlert{
		UserID:       3,
		Username:     "meera",
		Level:        LevelWarning,
		MonthlySpend: core.Money{Paise: 820000},
		Budget:       core.Money{Paise: 1000000},
	}

	body, err := alert.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() = %v", err)
	}

	got, err := BudgetAlertFromJSON(body)
	if err != nil {
		t.Fatalf("BudgetAlertFromJSON() = %v", err)
	}
	if got.UserID != alert.UserID || got.Level != alert.Level || got.MonthlySpend != alert.MonthlySpend {
		t.Errorf("round trip = %+v, want %+v", got, alert)
	}
}

func TestNilPublisherIsNoop(t *testing.T) {
	var p *Publisher
	if err := p.PublishBudgetAlert(context.Background(), core.Session{UserID: 1}, LevelWarning, core.Money{Paise: 1}, core.Money{Paise: 1}); err != nil {
		t.Errorf("nil publisher PublishBudgetAlert() = %v, want nil", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("nil publisher Close() = %v, want nil", err)
	}
}
