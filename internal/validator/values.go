package validator

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// DefaultMaxLength is the String limit when none is given.
const DefaultMaxLength = 2147483648

// MinPasswordEntropy is the strength threshold used by Password.
const MinPasswordEntropy = 50

// Rule is a field declaration in Fields: either a Value or a Group.
type Rule interface {
	rule()
}

// Value validates one raw input and keeps the coerced result.
//
// Validate never panics; a false result leaves Value unspecified.
type Value interface {
	Rule
	Validate(raw interface{}) bool
	Value() interface{}
	Kind() string
	Params() []Param
	IsOptional() bool
}

// Param is a constraint reported in invalid-value diagnostics.
type Param struct {
	Name  string
	Value string
}

// Option configures a Value at construction.
type Option func(*base)

// Optional lets the field be absent.
func Optional(b *base) { b.optional = true }

type base struct {
	kind     string
	optional bool
	value    interface{}
}

func newBase(kind string, opts []Option) base {
	b := base{kind: kind}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b *base) rule()              {}
func (b *base) Value() interface{} { return b.value }
func (b *base) Kind() string       { return b.kind }
func (b *base) Params() []Param    { return nil }
func (b *base) IsOptional() bool   { return b.optional }

// text normalises scalar JSON and form inputs for textual parsing.
func text(raw interface{}) (string, bool) {
	switch v := raw.(type) {
	case nil:
		return "", true
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case json.Number:
		return v.String(), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case bool:
		return strconv.FormatBool(v), true
	}
	return "", false
}

// ===== STRING FAMILY =====

type StringValue struct {
	base
	maxLength int64
}

// String accepts text of at most maxLength characters.
func String(maxLength int64, opts ...Option) *StringValue {
	return &StringValue{base: newBase("String", opts), maxLength: maxLength}
}

// Text is a String without a practical length limit.
func Text(opts ...Option) *StringValue {
	return String(DefaultMaxLength, opts...)
}

func (v *StringValue) Validate(raw interface{}) bool {
	s, ok := text(raw)
	if !ok {
		return false
	}
	v.value = s
	return int64(len([]rune(s))) <= v.maxLength
}

func (v *StringValue) Params() []Param {
	return []Param{{Name: "max_length", Value: strconv.FormatInt(v.maxLength, 10)}}
}

type URLValue struct{ base }

// URL accepts text that starts with https://. Nothing else is checked.
func URL(opts ...Option) *URLValue {
	return &URLValue{base: newBase("Url", opts)}
}

func (v *URLValue) Validate(raw interface{}) bool {
	s, ok := text(raw)
	if !ok {
		return false
	}
	v.value = s
	return strings.HasPrefix(s, "https://")
}

type PasswordValue struct{ base }

// Password accepts text whose Entropy is at least MinPasswordEntropy.
func Password(opts ...Option) *PasswordValue {
	return &PasswordValue{base: newBase("Password", opts)}
}

// Entropy estimates strength as log2(distinct^length).
func Entropy(password string) float64 {
	runes := []rune(password)
	if len(runes) == 0 {
		return 0
	}
	distinct := make(map[rune]struct{}, len(runes))
	for _, r := range runes {
		distinct[r] = struct{}{}
	}
	return float64(len(runes)) * math.Log2(float64(len(distinct)))
}

func (v *PasswordValue) Validate(raw interface{}) bool {
	s, ok := text(raw)
	if !ok {
		return false
	}
	v.value = s
	return Entropy(s) >= MinPasswordEntropy
}

type EmailValue struct{ base }

// Email accepts a conventional email address.
func Email(opts ...Option) *EmailValue {
	return &EmailValue{base: newBase("Email", opts)}
}

func (v *EmailValue) Validate(raw interface{}) bool {
	s, ok := text(raw)
	if !ok || s == "" {
		return false
	}
	if err := shared.Var(s, "required,email"); err != nil {
		return false
	}
	v.value = s
	return true
}

type PhoneValue struct{ base }

// Phone keeps the upstream rule as is: a value without a leading "+" whose
// tail is numeric and shorter than 16 characters is rejected, everything
// else is accepted. This is inverted from what a phone check should do and
// is kept until the intended behaviour is confirmed.
func Phone(opts ...Option) *PhoneValue {
	return &PhoneValue{base: newBase("Phone", opts)}
}

func (v *PhoneValue) Validate(raw interface{}) bool {
	s, ok := text(raw)
	if !ok {
		return false
	}
	tail := ""
	if r := []rune(s); len(r) > 0 {
		tail = string(r[1:])
	}
	if !strings.HasPrefix(s, "+") && isNumeric(tail) && len([]rune(tail)) < 16 {
		return false
	}
	v.value = s
	return true
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ===== NUMBERS =====

type IntegerValue struct{ base }

// Integer parses a base-10 integer; empty input is zero.
func Integer(opts ...Option) *IntegerValue {
	return &IntegerValue{base: newBase("Integer", opts)}
}

func parseInteger(raw interface{}) (int64, bool) {
	s, ok := text(raw)
	if !ok {
		return 0, false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (v *IntegerValue) Validate(raw interface{}) bool {
	n, ok := parseInteger(raw)
	if !ok {
		return false
	}
	v.value = n
	return true
}

type FloatValue struct{ base }

// Float parses a decimal number; empty input is zero.
func Float(opts ...Option) *FloatValue {
	return &FloatValue{base: newBase("Float", opts)}
}

func (v *FloatValue) Validate(raw interface{}) bool {
	s, ok := text(raw)
	if !ok {
		return false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		v.value = 0.0
		return true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return false
	}
	v.value = f
	return true
}

type BooleanValue struct{ base }

// Boolean accepts a native bool or "true"/"false" in any case.
func Boolean(opts ...Option) *BooleanValue {
	return &BooleanValue{base: newBase("Boolean", opts)}
}

func (v *BooleanValue) Validate(raw interface{}) bool {
	switch b := raw.(type) {
	case bool:
		v.value = b
		return true
	case string:
		switch strings.ToLower(b) {
		case "true":
			v.value = true
			return true
		case "false":
			v.value = false
			return true
		}
	}
	return false
}

// ChoiceValue accepts an integer from a closed set.
type ChoiceValue struct {
	base
	choices []int64
}

// MealTime accepts 0 to 3; empty input is 0.
func MealTime(opts ...Option) *ChoiceValue {
	return &ChoiceValue{base: newBase("MealTime", opts), choices: []int64{0, 1, 2, 3}}
}

// Role accepts 0 to 2.
func Role(opts ...Option) *ChoiceValue {
	return &ChoiceValue{base: newBase("Role", opts), choices: []int64{0, 1, 2}}
}

func (v *ChoiceValue) Validate(raw interface{}) bool {
	n, ok := parseInteger(raw)
	if !ok {
		return false
	}
	v.value = n
	for _, c := range v.choices {
		if n == c {
			return true
		}
	}
	return false
}

func (v *ChoiceValue) Params() []Param {
	parts := make([]string, len(v.choices))
	for i, c := range v.choices {
		parts[i] = strconv.FormatInt(c, 10)
	}
	return []Param{{Name: "choices", Value: strings.Join(parts, ",")}}
}

type IDListValue struct{ base }

// IDList parses comma separated integers, skipping empty segments.
func IDList(opts ...Option) *IDListValue {
	return &IDListValue{base: newBase("List", opts)}
}

func (v *IDListValue) Validate(raw interface{}) bool {
	ids := []int64{}
	if items, ok := raw.([]interface{}); ok {
		for _, item := range items {
			n, ok := parseInteger(item)
			if !ok {
				return false
			}
			ids = append(ids, n)
		}
		v.value = ids
		return true
	}

	s, ok := text(raw)
	if !ok {
		return false
	}
	for _, part := range strings.Split(s, ",") {
		if part == "" {
			continue
		}
		n, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return false
		}
		ids = append(ids, n)
	}
	v.value = ids
	return true
}

// ===== CALENDAR =====

// TimeOfDay is the value produced by Time.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

type TimeValue struct{ base }

// Time accepts HH:MM or HH:MM:SS.
func Time(opts ...Option) *TimeValue {
	return &TimeValue{base: newBase("Time", opts)}
}

func (v *TimeValue) Validate(raw interface{}) bool {
	s, ok := text(raw)
	if !ok {
		return false
	}
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return false
	}
	if len(parts) == 2 {
		parts = append(parts, "00")
	}

	fields := make([]int, 3)
	for i, part := range parts {
		if !isNumeric(part) {
			return false
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return false
		}
		fields[i] = n
	}
	if fields[0] > 23 || fields[1] > 59 || fields[2] > 59 {
		return false
	}
	v.value = TimeOfDay{Hour: fields[0], Minute: fields[1], Second: fields[2]}
	return true
}

type DateValue struct{ base }

// Date accepts three dash separated parts that each pass Integer. The
// original text is kept as the value.
func Date(opts ...Option) *DateValue {
	return &DateValue{base: newBase("Date", opts)}
}

func (v *DateValue) Validate(raw interface{}) bool {
	s, ok := text(raw)
	if !ok {
		return false
	}
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return false
	}
	v.value = s
	for _, part := range parts {
		if !Integer().Validate(part) {
			return false
		}
	}
	return true
}

// ===== REFERENCES =====

// KeyType converts the raw key before a ForeignKey lookup.
type KeyType int

const (
	KeyString KeyType = iota
	KeyInt
)

func (k KeyType) String() string {
	if k == KeyInt {
		return "int"
	}
	return "str"
}

// Finder resolves a key to a record.
type Finder func(key interface{}) (interface{}, bool)

type ForeignKeyValue struct {
	base
	model   string
	key     string
	keyType KeyType
	find    Finder
}

// ForeignKey accepts a key that resolves to an existing record. The
// resolved record becomes the value.
func ForeignKey(model, key string, keyType KeyType, find Finder, opts ...Option) *ForeignKeyValue {
	return &ForeignKeyValue{
		base:    newBase("Id", opts),
		model:   model,
		key:     key,
		keyType: keyType,
		find:    find,
	}
}

func (v *ForeignKeyValue) Validate(raw interface{}) bool {
	var key interface{}
	switch v.keyType {
	case KeyInt:
		n, ok := parseInteger(raw)
		if !ok {
			return false
		}
		key = n
	default:
		s, ok := text(raw)
		if !ok {
			return false
		}
		key = s
	}

	record, found := v.find(key)
	if !found {
		return false
	}
	v.value = record
	return true
}

func (v *ForeignKeyValue) Params() []Param {
	return []Param{
		{Name: "model", Value: v.model},
		{Name: "key", Value: v.key},
		{Name: "key_type", Value: v.keyType.String()},
	}
}

// ===== NESTED OBJECTS =====

type JSONValue struct {
	base
	schema    map[string]func() Value
	arbitrary bool
}

// JSON accepts an object, or a string holding one, whose keys are all
// declared in schema and whose values pass their validators. Each schema
// entry builds a fresh validator per key.
func JSON(schema map[string]func() Value, opts ...Option) *JSONValue {
	return &JSONValue{base: newBase("Json", opts), schema: schema}
}

// AnyJSON accepts any object regardless of keys.
func AnyJSON(opts ...Option) *JSONValue {
	return &JSONValue{base: newBase("Json", opts), arbitrary: true}
}

// FloatMap is a JSON schema of optional-free Float validators for keys.
func FloatMap(keys []string, opts ...Option) *JSONValue {
	schema := make(map[string]func() Value, len(keys))
	for _, key := range keys {
		schema[key] = func() Value { return Float() }
	}
	return JSON(schema, opts...)
}

func (v *JSONValue) Validate(raw interface{}) bool {
	object, ok := raw.(map[string]interface{})
	if !ok {
		s, isText := raw.(string)
		if !isText {
			return false
		}
		if err := json.Unmarshal([]byte(s), &object); err != nil || object == nil {
			return false
		}
	}

	if v.arbitrary {
		v.value = object
		return true
	}

	coerced := make(map[string]interface{}, len(object))
	for key, item := range object {
		build, declared := v.schema[key]
		if !declared {
			return false
		}
		sub := build()
		if !sub.Validate(item) {
			return false
		}
		coerced[key] = sub.Value()
	}
	v.value = coerced
	return true
}

func (v *JSONValue) Params() []Param {
	keys := make([]string, 0, len(v.schema))
	for key := range v.schema {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return []Param{
		{Name: "schema", Value: "{" + strings.Join(keys, ",") + "}"},
		{Name: "arbitrary", Value: strconv.FormatBool(v.arbitrary)},
	}
}
