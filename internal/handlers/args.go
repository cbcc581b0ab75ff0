package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/SAP-F-2025/diet-service/internal/validator"
)

// Optional argument accessors. Each returns nil when the field was not
// supplied.

func stringArg(a *validator.Args, name string) *string {
	if !a.Has(name) {
		return nil
	}
	s := a.String(name)
	return &s
}

func floatArg(a *validator.Args, name string) *float64 {
	if !a.Has(name) {
		return nil
	}
	f := a.Float(name)
	return &f
}

func intArg(a *validator.Args, name string) *int {
	if !a.Has(name) {
		return nil
	}
	n := int(a.Int(name))
	return &n
}

func uintArg(a *validator.Args, name string) *uint {
	if !a.Has(name) {
		return nil
	}
	n := keyArg(a, name)
	return &n
}

// keyArg reads a record key. Negative values map to 0, which no record
// carries, so lookups report not found.
func keyArg(a *validator.Args, name string) uint {
	n := a.Int(name)
	if n < 0 {
		return 0
	}
	return uint(n)
}

func boolArg(a *validator.Args, name string) *bool {
	if !a.Has(name) {
		return nil
	}
	b := a.Bool(name)
	return &b
}

func dateArg(a *validator.Args, name string) *time.Time {
	if !a.Has(name) {
		return nil
	}
	d := parseDate(a.String(name))
	return &d
}

func floatsArg(a *validator.Args, name string) map[string]float64 {
	if !a.Has(name) {
		return nil
	}
	return a.Floats(name)
}

// parseDate reads a value accepted by validator.Date. Out of range parts
// are normalised by time.Date.
func parseDate(s string) time.Time {
	parts := strings.Split(s, "-")
	n := make([]int, 3)
	for i := 0; i < len(parts) && i < 3; i++ {
		n[i], _ = strconv.Atoi(strings.TrimSpace(parts[i]))
	}
	return time.Date(n[0], time.Month(n[1]), n[2], 0, 0, 0, 0, time.UTC)
}
