package bulk

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"reflect"
	"strconv"
	"sync"
	"time"

	"gorm.io/gorm/schema"

	"github.com/SAP-F-2025/diet-service/internal/repositories"
)

var (
	schemaCache = &sync.Map{}
	timeType    = reflect.TypeOf(time.Time{})
)

// Accepted time layouts on import, tried in order. Exports use the first.
var timeLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"}

// resource is one exportable model, erased of its type.
type resource interface {
	header() []string
	export(ctx context.Context, repo repositories.Repository) ([][]string, error)
	decode(header []string, rows [][]string) (func(ctx context.Context, repo repositories.Repository) error, []RowError)
}

// table maps a gorm model to CSV columns named after its database columns.
type table[T any] struct {
	name    string
	columns []*schema.Field
	pk      *schema.Field
	store   func(repositories.Repository) repositories.Store[T]
}

func newTable[T any](name string, store func(repositories.Repository) repositories.Store[T]) (*table[T], error) {
	sch, err := schema.Parse(new(T), schemaCache, schema.NamingStrategy{})
	if err != nil {
		return nil, fmt.Errorf("parse %s schema: %w", name, err)
	}
	if sch.PrioritizedPrimaryField == nil {
		return nil, fmt.Errorf("%s has no primary key", name)
	}

	t := &table[T]{name: name, pk: sch.PrioritizedPrimaryField, store: store}
	for _, dbName := range sch.DBNames {
		t.columns = append(t.columns, sch.FieldsByDBName[dbName])
	}
	return t, nil
}

func (t *table[T]) header() []string {
	names := make([]string, len(t.columns))
	for i, field := range t.columns {
		names[i] = field.DBName
	}
	return names
}

func (t *table[T]) export(ctx context.Context, repo repositories.Repository) ([][]string, error) {
	records, err := t.store(repo).All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", t.name, err)
	}

	rows := make([][]string, 0, len(records))
	for i := range records {
		rv := reflect.ValueOf(&records[i]).Elem()
		row := make([]string, len(t.columns))
		for j, field := range t.columns {
			cell, err := formatCell(field.ReflectValueOf(ctx, rv))
			if err != nil {
				return nil, fmt.Errorf("failed to format %s.%s: %w", t.name, field.DBName, err)
			}
			row[j] = cell
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// decode parses every row before anything is written. The returned writer
// upserts the decoded records; it is nil when any row failed.
func (t *table[T]) decode(header []string, rows [][]string) (func(ctx context.Context, repo repositories.Repository) error, []RowError) {
	fields := make([]*schema.Field, len(header))
	var errs []RowError
	hasKey := false
	for i, name := range header {
		for _, field := range t.columns {
			if field.DBName == name {
				fields[i] = field
			}
		}
		if fields[i] == nil {
			errs = append(errs, RowError{Row: 1, Message: fmt.Sprintf("unknown column %q", name)})
		}
		hasKey = hasKey || name == t.pk.DBName
	}
	if !hasKey {
		errs = append(errs, RowError{Row: 1, Message: fmt.Sprintf("missing key column %q", t.pk.DBName)})
	}
	if len(errs) > 0 {
		return nil, errs
	}

	ctx := context.Background()
	records := make([]T, len(rows))
	for i, row := range rows {
		line := i + 2
		if len(row) != len(header) {
			errs = append(errs, RowError{Row: line, Message: fmt.Sprintf("expected %d cells, got %d", len(header), len(row))})
			continue
		}
		rv := reflect.ValueOf(&records[i]).Elem()
		for j, cell := range row {
			if err := parseCell(fields[j].ReflectValueOf(ctx, rv), cell); err != nil {
				errs = append(errs, RowError{Row: line, Message: fmt.Sprintf("%s: %v", header[j], err)})
			}
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	return func(ctx context.Context, repo repositories.Repository) error {
		store := t.store(repo)
		for i := range records {
			if err := store.Save(ctx, &records[i]); err != nil {
				return rowFailure{row: i + 2, err: err}
			}
		}
		if syncer, ok := repo.(repositories.SequenceSyncer); ok && isInteger(t.pk.IndirectFieldType) {
			if err := syncer.SyncSequence(ctx, t.name, t.pk.DBName); err != nil {
				return err
			}
		}
		return nil
	}, nil
}

// rowFailure is a write rejected by the store, reported against its row.
type rowFailure struct {
	row int
	err error
}

func (f rowFailure) Error() string {
	return fmt.Sprintf("row %d: %v", f.row, f.err)
}

func (f rowFailure) Unwrap() error {
	return f.err
}

func isInteger(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

// formatCell renders one column value. Nil pointers and zero times are
// empty cells; JSON columns are rendered through their driver value.
func formatCell(v reflect.Value) (string, error) {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return "", nil
		}
		v = v.Elem()
	}

	if v.Type() == timeType {
		ts := v.Interface().(time.Time)
		if ts.IsZero() {
			return "", nil
		}
		return ts.UTC().Format(timeLayouts[0]), nil
	}
	valuer, ok := v.Interface().(driver.Valuer)
	if !ok && v.CanAddr() {
		valuer, ok = v.Addr().Interface().(driver.Valuer)
	}
	if ok {
		value, err := valuer.Value()
		if err != nil {
			return "", err
		}
		switch x := value.(type) {
		case nil:
			return "", nil
		case []byte:
			return string(x), nil
		case string:
			return x, nil
		default:
			return fmt.Sprint(x), nil
		}
	}

	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64), nil
	case reflect.Bool:
		return strconv.FormatBool(v.Bool()), nil
	case reflect.String:
		return v.String(), nil
	}
	return "", fmt.Errorf("unsupported column type %s", v.Type())
}

// parseCell is the inverse of formatCell. An empty cell leaves pointers
// nil and other fields at their zero value.
func parseCell(v reflect.Value, cell string) error {
	if v.Kind() == reflect.Pointer {
		if cell == "" {
			v.Set(reflect.Zero(v.Type()))
			return nil
		}
		ptr := reflect.New(v.Type().Elem())
		if err := parseCell(ptr.Elem(), cell); err != nil {
			return err
		}
		v.Set(ptr)
		return nil
	}
	if cell == "" {
		v.Set(reflect.Zero(v.Type()))
		return nil
	}

	if v.Type() == timeType {
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, cell); err == nil {
				v.Set(reflect.ValueOf(ts))
				return nil
			}
		}
		return fmt.Errorf("invalid time %q", cell)
	}
	if scanner, ok := v.Addr().Interface().(sql.Scanner); ok {
		return scanner.Scan([]byte(cell))
	}

	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(cell, 10, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(cell, 10, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(cell, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(cell)
		if err != nil {
			return err
		}
		v.SetBool(b)
	case reflect.String:
		v.SetString(cell)
	default:
		return fmt.Errorf("unsupported column type %s", v.Type())
	}
	return nil
}
