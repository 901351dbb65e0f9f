package models

import "errors"

// SyncMode says whether polling recurs on its own.
type SyncMode int

const (
	SyncPaused SyncMode = iota
	SyncLive
)

func (m SyncMode) String() string {
	if m == SyncLive {
		return "live"
	}
	return "paused"
}

const (
	DefaultRole  = "RX"
	DefaultLimit = 50
)

// Limits is the set of list sizes an operator can pick.
var Limits = []int{20, 50, 100, 200}

// ErrInvalidLimit is the cause of every rejected limit. The field message
// lists Limits.
var ErrInvalidLimit = errors.New("invalid limit")

// QueryParams selects which messages a poll cycle reads.
type QueryParams struct {
	Role  string
	Limit int
}

// DefaultQuery returns RX messages with the default limit.
func DefaultQuery() QueryParams {
	return QueryParams{Role: DefaultRole, Limit: DefaultLimit}
}

// Validate checks the role and limit.
func (q QueryParams) Validate() error {
	validation := &ValidationErrors{}
	validation.Require("role", q.Role)
	OneOf(validation, "limit", q.Limit, Limits, ErrInvalidLimit)
	return validation.Err()
}

// IsValidLimit reports whether n is in Limits.
func IsValidLimit(n int) bool {
	for _, limit := range Limits {
		if limit == n {
			return true
		}
	}
	return false
}

// NextLimit returns the option after n, wrapping around. Unknown values
// jump to the default.
func NextLimit(n int) int {
	return stepLimit(n, 1)
}

// PrevLimit returns the option before n, wrapping around.
func PrevLimit(n int) int {
	return stepLimit(n, -1)
}

func stepLimit(n, step int) int {
	for i, limit := range Limits {
		if limit == n {
			return Limits[(i+step+len(Limits))%len(Limits)]
		}
	}
	return DefaultLimit
}
