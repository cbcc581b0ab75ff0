package memory

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/SAP-F-2025/diet-service/internal/repositories"
)

var (
	schemaCache = &sync.Map{}
	timeType    = reflect.TypeOf(time.Time{})
)

// table holds the rows of one model keyed by formatted primary key.
type table[T any] struct {
	db     *Database
	name   string
	schema *schema.Schema
	pk     *schema.Field
	rows   map[string]T
	nextID uint64
}

func newTable[T any](db *Database, name string) (*table[T], error) {
	sch, err := schema.Parse(new(T), schemaCache, schema.NamingStrategy{})
	if err != nil {
		return nil, fmt.Errorf("parse %s schema: %w", name, err)
	}
	if sch.PrioritizedPrimaryField == nil {
		return nil, fmt.Errorf("%s has no primary key", name)
	}
	t := &table[T]{
		db:     db,
		name:   name,
		schema: sch,
		pk:     sch.PrioritizedPrimaryField,
		rows:   map[string]T{},
	}
	db.register(t)
	return t, nil
}

// snapshot copies the rows and returns a function restoring them.
func (t *table[T]) snapshot() func() {
	rows := make(map[string]T, len(t.rows))
	for k, v := range t.rows {
		rows[k] = v
	}
	nextID := t.nextID
	return func() {
		t.rows = rows
		t.nextID = nextID
	}
}

func (t *table[T]) key(rv reflect.Value) string {
	s, _ := format(t.pk.ReflectValueOf(context.Background(), rv))
	return s
}

func (t *table[T]) numericKey() bool {
	switch t.pk.IndirectFieldType.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

// sorted returns the rows matching filter in primary key order.
func (t *table[T]) sorted(filter repositories.Filter) ([]T, error) {
	columns := make(map[string]*schema.Field, len(filter))
	for column := range filter {
		field := t.schema.LookUpField(column)
		if field == nil || field.DBName == "" {
			return nil, fmt.Errorf("list %s failed: unknown column %q", t.name, column)
		}
		columns[column] = field
	}

	keys := make([]string, 0, len(t.rows))
	for k, row := range t.rows {
		if t.matches(&row, filter, columns) {
			keys = append(keys, k)
		}
	}

	numeric := t.numericKey()
	sort.Slice(keys, func(i, j int) bool {
		if numeric {
			a, _ := strconv.ParseUint(keys[i], 10, 64)
			b, _ := strconv.ParseUint(keys[j], 10, 64)
			return a < b
		}
		return keys[i] < keys[j]
	})

	out := make([]T, len(keys))
	for i, k := range keys {
		out[i] = t.rows[k]
	}
	return out, nil
}

func (t *table[T]) matches(row *T, filter repositories.Filter, columns map[string]*schema.Field) bool {
	rv := reflect.ValueOf(row).Elem()
	for column, want := range filter {
		got, gotNull := format(columns[column].ReflectValueOf(context.Background(), rv))
		if !anyEqual(got, gotNull, want) {
			return false
		}
	}
	return true
}

// prepare assigns keys and timestamps the way the gorm callbacks do.
func (t *table[T]) prepare(rv reflect.Value, creating bool) {
	ctx := context.Background()
	now := time.Now()

	pkValue := t.pk.ReflectValueOf(ctx, rv)
	if t.numericKey() {
		if pkValue.IsZero() {
			t.nextID++
			pkValue.Set(reflect.ValueOf(t.nextID).Convert(pkValue.Type()))
		} else if id, err := strconv.ParseUint(t.key(rv), 10, 64); err == nil && id > t.nextID {
			t.nextID = id
		}
	}

	for _, field := range t.schema.Fields {
		if field.FieldType != timeType {
			continue
		}
		value := field.ReflectValueOf(ctx, rv)
		if field.AutoUpdateTime > 0 || (creating && field.AutoCreateTime > 0 && value.IsZero()) {
			value.Set(reflect.ValueOf(now))
		}
	}
}

// detach clears association fields; they are stored by their own tables.
// The shared schema cache also lists relations declared by other models
// on this one, which are skipped.
func (t *table[T]) detach(record T) T {
	rv := reflect.ValueOf(&record).Elem()
	for _, rel := range t.schema.Relationships.Relations {
		if rel.Field.Schema == nil || rel.Field.Schema.ModelType != t.schema.ModelType {
			continue
		}
		value := rel.Field.ReflectValueOf(context.Background(), rv)
		value.Set(reflect.Zero(value.Type()))
	}
	return record
}

func (t *table[T]) insert(record *T) error {
	rv := reflect.ValueOf(record).Elem()
	t.prepare(rv, true)
	k := t.key(rv)
	if _, exists := t.rows[k]; exists {
		return fmt.Errorf("create %s failed: %w", t.name, gorm.ErrDuplicatedKey)
	}
	t.rows[k] = t.detach(*record)
	return nil
}

func (t *table[T]) upsert(record *T) error {
	rv := reflect.ValueOf(record).Elem()
	if t.numericKey() && t.pk.ReflectValueOf(context.Background(), rv).IsZero() {
		return t.insert(record)
	}
	t.prepare(rv, false)
	t.rows[t.key(rv)] = t.detach(*record)
	return nil
}

func (t *table[T]) remove(filter repositories.Filter) (int64, error) {
	if len(filter) == 0 {
		return 0, fmt.Errorf("delete %s: %w", t.name, gorm.ErrMissingWhereClause)
	}
	rows, err := t.sorted(filter)
	if err != nil {
		return 0, err
	}
	for i := range rows {
		delete(t.rows, t.key(reflect.ValueOf(&rows[i]).Elem()))
	}
	return int64(len(rows)), nil
}

// format renders a value for comparison; pointers are followed and nil
// reports null.
func format(v reflect.Value) (string, bool) {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return "", true
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return "", true
	}
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), false
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10), false
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64), false
	case reflect.Bool:
		return strconv.FormatBool(v.Bool()), false
	case reflect.String:
		return v.String(), false
	}
	return fmt.Sprint(v.Interface()), false
}

func anyEqual(got string, gotNull bool, want interface{}) bool {
	wv := reflect.ValueOf(want)
	if wv.IsValid() && (wv.Kind() == reflect.Slice || wv.Kind() == reflect.Array) && wv.Type().Elem().Kind() != reflect.Uint8 {
		for i := 0; i < wv.Len(); i++ {
			s, null := format(wv.Index(i))
			if null == gotNull && s == got {
				return true
			}
		}
		return false
	}
	s, null := format(wv)
	return null == gotNull && s == got
}
