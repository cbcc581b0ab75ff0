// Package bulk exports tables as CSV or XLSX and restores them from CSV.
package bulk

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/diet-service/internal/repositories"
)

var ErrUnknownResource = errors.New("unknown resource")

// RowError locates an import failure. Row 1 is the header.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Result is the outcome of one import. Nothing is written when HasErrors
// is set.
type Result struct {
	Rows      int        `json:"rows"`
	HasErrors bool       `json:"has_errors"`
	Errors    []RowError `json:"errors,omitempty"`
}

type Service struct {
	repo      repositories.Repository
	logger    *slog.Logger
	resources map[string]resource
}

func NewService(repo repositories.Repository, logger *slog.Logger) (*Service, error) {
	s := &Service{repo: repo, logger: logger, resources: map[string]resource{}}

	var errs []error
	register := func(name string, r resource, err error) {
		if err != nil {
			errs = append(errs, err)
			return
		}
		s.resources[name] = r
	}
	users, err := newTable("users", repositories.Repository.Users)
	register("users", users, err)
	profiles, err := newTable("profiles", repositories.Repository.Profiles)
	register("profiles", profiles, err)
	diets, err := newTable("diets", repositories.Repository.Diets)
	register("diets", diets, err)
	mealPlans, err := newTable("meal_plans", repositories.Repository.MealPlans)
	register("meal_plans", mealPlans, err)
	submissions, err := newTable("submissions", repositories.Repository.Submissions)
	register("submissions", submissions, err)
	foods, err := newTable("foods", repositories.Repository.Foods)
	register("foods", foods, err)
	nutritions, err := newTable("nutritions", repositories.Repository.Nutritions)
	register("nutritions", nutritions, err)

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return s, nil
}

// Resources lists the exportable resource names.
func (s *Service) Resources() []string {
	names := make([]string, 0, len(s.resources))
	for name := range s.resources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Service) lookup(name string) (resource, error) {
	r, ok := s.resources[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownResource, name)
	}
	return r, nil
}

// ExportCSV writes a header of column names and one row per record in
// primary key order.
func (s *Service) ExportCSV(ctx context.Context, name string) ([]byte, error) {
	r, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	rows, err := r.export(ctx, s.repo)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(r.header()); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("failed to write %s csv: %w", name, err)
	}

	s.logger.Info("Resource exported", "resource", name, "rows", len(rows), "format", "csv")
	return buf.Bytes(), nil
}

// ExportXLSX writes the same table as ExportCSV to a single sheet named
// after the resource.
func (s *Service) ExportXLSX(ctx context.Context, name string) ([]byte, error) {
	r, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	rows, err := r.export(ctx, s.repo)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Error("Failed to close workbook", "error", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", name); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	for i, row := range append([][]string{r.header()}, rows...) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(name, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetRowStyle(name, 1, 1, bold); err != nil {
		return nil, err
	}
	if err := f.SetPanes(name, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write %s workbook: %w", name, err)
	}
	s.logger.Info("Resource exported", "resource", name, "rows", len(rows), "format", "xlsx")
	return buf.Bytes(), nil
}

// ImportCSV upserts every row by primary key in one transaction. A row
// that cannot be parsed or stored aborts the whole import.
func (s *Service) ImportCSV(ctx context.Context, name string, data []byte) (*Result, error) {
	r, err := s.lookup(name)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return &Result{HasErrors: true, Errors: []RowError{{Message: err.Error()}}}, nil
	}
	if len(records) == 0 {
		return &Result{HasErrors: true, Errors: []RowError{{Row: 1, Message: "missing header"}}}, nil
	}

	rows := records[1:]
	write, rowErrs := r.decode(records[0], rows)
	if len(rowErrs) > 0 {
		return &Result{Rows: len(rows), HasErrors: true, Errors: rowErrs}, nil
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		return write(ctx, tx)
	})
	var failure rowFailure
	if errors.As(err, &failure) {
		s.logger.Warn("Import rejected by store", "resource", name, "row", failure.row, "error", failure.err)
		return &Result{Rows: len(rows), HasErrors: true, Errors: []RowError{{Row: failure.row, Message: failure.err.Error()}}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to import %s: %w", name, err)
	}

	s.logger.Info("Resource imported", "resource", name, "rows", len(rows))
	return &Result{Rows: len(rows)}, nil
}

