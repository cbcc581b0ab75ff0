package validator

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/SAP-F-2025/diet-service/internal/i18n"
)

// Group is a nested sub-schema. Its errors are reported under the group's
// name, one level deep.
type Group map[string]Value

func (Group) rule() {}

// Fields declares one endpoint's expected POST body.
type Fields map[string]Rule

// Args runs Fields against a request body and holds the outcome.
type Args struct {
	tr        i18n.Translator
	fields    Fields
	values    map[string]interface{}
	errors    map[string]interface{}
	cancelled bool
}

func NewArgs(tr i18n.Translator, fields Fields) *Args {
	return &Args{
		tr:     tr,
		fields: fields,
		values: map[string]interface{}{},
		errors: map[string]interface{}{},
	}
}

// ValidateAll validates every declared field and reports whether the
// arguments are usable. It may be called once per Args.
func (a *Args) ValidateAll(body map[string]interface{}) bool {
	for _, name := range sortedNames(a.fields) {
		switch rule := a.fields[name].(type) {
		case Group:
			a.validateGroup(name, rule, body[name])
		case Value:
			raw, present := lookup(body, name)
			if msg, ok := a.validateOne(rule, raw, present); !ok {
				a.fail(name, msg)
			} else if present {
				a.values[name] = rule.Value()
			}
		}
	}
	return !a.cancelled
}

func (a *Args) validateGroup(name string, group Group, raw interface{}) {
	var body map[string]interface{}
	switch v := raw.(type) {
	case nil:
		body = map[string]interface{}{}
	case map[string]interface{}:
		body = v
	case string:
		if err := json.Unmarshal([]byte(v), &body); err != nil || body == nil {
			a.fail(name, a.tr.Translate("arg.invalid_value", "Group", "schema="+groupKeys(group)))
			return
		}
	default:
		a.fail(name, a.tr.Translate("arg.invalid_value", "Group", "schema="+groupKeys(group)))
		return
	}

	values := map[string]interface{}{}
	errs := map[string]string{}
	for _, sub := range sortedNames(group) {
		rule := group[sub]
		rawSub, present := lookup(body, sub)
		msg, ok := a.validateOne(rule, rawSub, present)
		if !ok {
			errs[sub] = msg
			continue
		}
		if present {
			values[sub] = rule.Value()
		}
	}

	if len(errs) > 0 {
		a.errors[name] = errs
		a.cancelled = true
		return
	}
	a.values[name] = values
}

func (a *Args) validateOne(rule Value, raw interface{}, present bool) (string, bool) {
	if !present {
		if rule.IsOptional() {
			return "", true
		}
		return a.tr.Translate("arg.not_found"), false
	}
	if !rule.Validate(raw) {
		return a.tr.Translate("arg.invalid_value", rule.Kind(), formatParams(rule.Params())), false
	}
	return "", true
}

func (a *Args) fail(name, msg string) {
	a.errors[name] = msg
	a.cancelled = true
}

// Cancelled reports whether any field failed.
func (a *Args) Cancelled() bool { return a.cancelled }

// Errors is the error tree: field name to message, or to a map of
// sub-field messages for groups.
func (a *Args) Errors() map[string]interface{} { return a.errors }

// Get returns the coerced value for name. Group members are addressed as
// "group.field". Optional fields that were absent report false.
func (a *Args) Get(name string) (interface{}, bool) {
	head, tail, nested := strings.Cut(name, ".")
	v, ok := a.values[head]
	if !ok || !nested {
		return v, ok
	}
	group, isGroup := v.(map[string]interface{})
	if !isGroup {
		return nil, false
	}
	v, ok = group[tail]
	return v, ok
}

// Has reports whether name was supplied and valid.
func (a *Args) Has(name string) bool {
	_, ok := a.Get(name)
	return ok
}

func (a *Args) String(name string) string {
	v, _ := a.Get(name)
	s, _ := v.(string)
	return s
}

func (a *Args) Int(name string) int64 {
	v, _ := a.Get(name)
	n, _ := v.(int64)
	return n
}

func (a *Args) Float(name string) float64 {
	v, _ := a.Get(name)
	f, _ := v.(float64)
	return f
}

func (a *Args) Bool(name string) bool {
	v, _ := a.Get(name)
	b, _ := v.(bool)
	return b
}

func (a *Args) IDs(name string) []int64 {
	v, _ := a.Get(name)
	ids, _ := v.([]int64)
	return ids
}

func (a *Args) Object(name string) map[string]interface{} {
	v, _ := a.Get(name)
	m, _ := v.(map[string]interface{})
	return m
}

// Floats converts an object of Float values to a typed map.
func (a *Args) Floats(name string) map[string]float64 {
	out := map[string]float64{}
	for k, v := range a.Object(name) {
		if f, ok := v.(float64); ok {
			out[k] = f
		}
	}
	return out
}

// lookup treats an explicit JSON null like an absent key.
func lookup(body map[string]interface{}, name string) (interface{}, bool) {
	v, ok := body[name]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func formatParams(params []Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.Name + "=" + p.Value
	}
	return strings.Join(parts, "; ")
}

func groupKeys(group Group) string {
	return "{" + strings.Join(sortedNames(group), ",") + "}"
}

func sortedNames[T any](m map[string]T) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
