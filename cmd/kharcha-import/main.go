// Command kharcha-import bulk-loads expenses from a JSON file into a user's
// account, useful when migrating from another tracker or a bank export.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"kharcha/internal/api"
	"kharcha/internal/config"
	"kharcha/internal/core"
	"kharcha/internal/log"
)

// record is one expense in the import file. Only amount is mandatory; the
// rest fall back to sane defaults.
type record struct {
	Title       string          `json:"title"`
	Amount      json.RawMessage `json:"amount"`
	Category    string          `json:"category"`
	PaymentMode string          `json:"payment_mode"`
	Note        string          `json:"note"`
	ExpenseDate string          `json:"expense_date"`
}

type importFile struct {
	Expenses []record `json:"expenses"`
}

func main() {
	var (
		filePath    = flag.String("file", "", "path to the JSON import file")
		userID      = flag.Int64("user", 0, "user id to import expenses into")
		concurrency = flag.Int("concurrency", 4, "number of parallel uploads")
	)
	flag.Parse()

	logger := log.New(log.DefaultConfig()).WithComponent(log.ComponentImporter)

	if *filePath == "" || *userID == 0 {
		fmt.Fprintln(os.Stderr, "usage: kharcha-import -file expenses.json -user <id> [-concurrency n]")
		os.Exit(2)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", log.FieldError, err)
		os.Exit(1)
	}

	records, err := readImportFile(*filePath)
	if err != nil {
		logger.Error("failed to read import file", log.FieldError, err, "file", *filePath)
		os.Exit(1)
	}
	if len(records) == 0 {
		logger.Info("nothing to import", "file", *filePath)
		return
	}

	client := api.New(cfg.APIBaseURL, cfg.APITimeout)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	var created, failed atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(*concurrency)

	for i, rec := range records {
		g.Go(func() error {
			in, err := toInput(rec, *userID)
			if err != nil {
				failed.Add(1)
				logger.Warn("skipping record", log.FieldError, err, "index", i)
				return nil
			}
			if _, err := client.CreateExpense(ctx, in); err != nil {
				failed.Add(1)
				logger.Warn("create failed", log.FieldError, err, "index", i, "title", in.Title)
				return nil
			}
			created.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("import aborted", log.FieldError, err)
		os.Exit(1)
	}

	logger.Info("import finished",
		"file", *filePath,
		log.FieldUserID, *userID,
		"created", created.Load(),
		"failed", failed.Load())
	if failed.Load() > 0 {
		os.Exit(1)
	}
}

// readImportFile accepts either a bare JSON array or {"expenses": [...]}.
func readImportFile(path string) ([]record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var records []record
	if err := json.Unmarshal(data, &records); err == nil {
		return records, nil
	}

	var wrapped importFile
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("parse import file: %w", err)
	}
	return wrapped.Expenses, nil
}

func toInput(rec record, userID int64) (api.ExpenseInput, error) {
	var amount core.Money
	if len(rec.Amount) == 0 {
		return api.ExpenseInput{}, fmt.Errorf("missing amount")
	}
	if err := amount.UnmarshalJSON(rec.Amount); err != nil {
		return api.ExpenseInput{}, fmt.Errorf("bad amount %s: %w", rec.Amount, err)
	}
	if amount.Paise <= 0 {
		return api.ExpenseInput{}, fmt.Errorf("amount must be positive, got %s", amount.Decimal())
	}

	title := rec.Title
	if title == "" {
		title = "Miscellaneous"
	}
	category := rec.Category
	if category == "" {
		category = "Other"
	}
	mode := core.PaymentMode(rec.PaymentMode)
	if rec.PaymentMode == "" {
		mode = core.PaymentCash
	}
	if !mode.IsValid() {
		return api.ExpenseInput{}, fmt.Errorf("unknown payment mode %q", rec.PaymentMode)
	}

	date := core.NewDate(time.Now().Year(), int(time.Now().Month()), time.Now().Day())
	if rec.ExpenseDate != "" {
		parsed, err := core.ParseDate(rec.ExpenseDate)
		if err != nil {
			return api.ExpenseInput{}, fmt.Errorf("bad date %q: %w", rec.ExpenseDate, err)
		}
		date = parsed
	}

	return api.ExpenseInput{
		UserID:      userID,
		Title:       title,
		Amount:      amount,
		Category:    category,
		PaymentMode: mode,
		Note:        rec.Note,
		ExpenseDate: date,
	}, nil
}
