// Command purchases applies a sheet of observed purchase prices through price governance.
//
// The CSV needs a header with at least "ingredient" and "price" columns; "supplier" and
// "reason" are optional. Each row runs in its own transaction, so one bad row never undoes
// the others. Unknown ingredients are reported and skipped, never created.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"costchef/internal/apperr"
	"costchef/internal/config"
	"costchef/internal/db"
	"costchef/internal/db/mock"
	"costchef/internal/engine"
	applog "costchef/internal/log"
	"costchef/internal/pricing"
)

var openDatabase = func(ctx context.Context, cfg config.DatabaseConfig) (*gorm.DB, error) {
	if cfg.UseMock {
		return mock.New(ctx)
	}
	return db.Configure(cfg)
}

type purchaseRow struct {
	Line       int
	Ingredient string
	Price      decimal.Decimal
	Supplier   string
	Reason     string
	Problem    string
}

type summary struct {
	Applied  int
	Rejected int
	NoChange int
	Failed   int
	Messages []string
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout))
}

func run(ctx context.Context, args []string, stdout io.Writer) int {
	flags := flag.NewFlagSet("purchases", flag.ContinueOnError)
	actor := flags.String("actor", pricing.DefaultActor, "name recorded on price history entries")
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: purchases [-actor name] <sheet.csv|->")
		return 2
	}

	if err := config.LoadDotEnv(); err != nil {
		applog.Error(ctx, "failed to load .env", "error", err)
		return 1
	}
	cfg, err := config.Load()
	if err != nil {
		applog.Error(ctx, "failed to load configuration", "error", err)
		return 1
	}
	if err := applog.SetLevel(cfg.Logging.Level); err != nil {
		applog.Error(ctx, "invalid log level", "level", cfg.Logging.Level, "error", err)
		return 1
	}

	rows, err := readSheet(flags.Arg(0))
	if err != nil {
		applog.Error(ctx, "failed to read purchase sheet", "path", flags.Arg(0), "error", err)
		return 1
	}

	database, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		applog.Error(ctx, "failed to open database", "error", err)
		return 1
	}
	if sqlDB, err := database.DB(); err == nil {
		defer sqlDB.Close()
	}

	target, err := cfg.Settings.TargetFoodCostPct()
	if err != nil {
		applog.Error(ctx, "invalid settings", "error", err)
		return 1
	}
	eng := engine.New(database, engine.Options{DefaultTargetFoodCostPct: decimal.NewNullDecimal(target)})

	result := applyRows(ctx, eng, rows, *actor)
	printSummary(stdout, result)
	return 0
}

func readSheet(path string) ([]purchaseRow, error) {
	if path == "-" {
		return readCSV(os.Stdin)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return readCSV(file)
}

func readCSV(r io.Reader) ([]purchaseRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("csv is empty")
	}

	columns := make(map[string]int, len(records[0]))
	for idx, name := range records[0] {
		columns[strings.ToLower(strings.TrimSpace(name))] = idx
	}
	for _, required := range []string{"ingredient", "price"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("missing %q column", required)
		}
	}

	field := func(record []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	rows := make([]purchaseRow, 0, len(records)-1)
	for i, record := range records[1:] {
		row := purchaseRow{
			Line:       i + 2,
			Ingredient: field(record, "ingredient"),
			Supplier:   field(record, "supplier"),
			Reason:     field(record, "reason"),
		}
		if row.Ingredient == "" && field(record, "price") == "" {
			continue
		}

		rawPrice := strings.TrimPrefix(field(record, "price"), "$")
		price, err := decimal.NewFromString(rawPrice)
		switch {
		case row.Ingredient == "":
			row.Problem = "missing ingredient name"
		case err != nil:
			row.Problem = fmt.Sprintf("price %q is not a number", rawPrice)
		default:
			row.Price = price
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func applyRows(ctx context.Context, eng *engine.Engine, rows []purchaseRow, actor string) summary {
	var result summary
	fail := func(row purchaseRow, format string, args ...any) {
		result.Failed++
		result.Messages = append(result.Messages, fmt.Sprintf("line %d: %s", row.Line, fmt.Sprintf(format, args...)))
	}

	for _, row := range rows {
		if row.Problem != "" {
			fail(row, "%s", row.Problem)
			continue
		}

		ing, err := eng.FindIngredientByName(ctx, row.Ingredient)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				fail(row, "unknown ingredient %q", row.Ingredient)
			} else {
				fail(row, "%v", err)
			}
			continue
		}

		req := pricing.PurchaseRequest{
			IngredientID: ing.ID,
			NewPrice:     row.Price,
			Reason:       row.Reason,
			Actor:        actor,
		}
		if row.Supplier != "" {
			supplier, err := eng.FindSupplierByName(ctx, row.Supplier)
			if err != nil {
				if errors.Is(err, apperr.ErrNotFound) {
					fail(row, "unknown supplier %q", row.Supplier)
				} else {
					fail(row, "%v", err)
				}
				continue
			}
			req.SupplierID = &supplier.ID
		}

		outcome, err := eng.ApplyPurchasePrice(ctx, req)
		if err != nil {
			fail(row, "%v", err)
			continue
		}
		switch outcome.Outcome {
		case pricing.Applied:
			result.Applied++
		case pricing.NoChange:
			result.NoChange++
		case pricing.Rejected:
			result.Rejected++
			result.Messages = append(result.Messages, fmt.Sprintf("line %d: %s rejected: %s", row.Line, row.Ingredient, outcome.RejectReason))
		}
	}
	return result
}

func printSummary(w io.Writer, s summary) {
	fmt.Fprintf(w, "applied: %d  unchanged: %d  rejected: %d  failed: %d\n", s.Applied, s.NoChange, s.Rejected, s.Failed)
	for _, message := range s.Messages {
		fmt.Fprintln(w, "  "+message)
	}
}
