package models

import (
	"fmt"
	"strings"
	"time"
)

// BookingStatus — статус бронирования.
type BookingStatus string

const (
	StatusWaiting  BookingStatus = "WAITING"
	StatusApproved BookingStatus = "APPROVED"
	StatusRejected BookingStatus = "REJECTED"
	// StatusCanceled объявлен в модели, переходов в него пока нет.
	StatusCanceled BookingStatus = "CANCELED"
)

type Booking struct {
	ID       int64         `json:"id"`
	ItemID   int64         `json:"item_id"`
	BookerID int64         `json:"booker_id"`
	Start    time.Time     `json:"start"`
	End      time.Time     `json:"end"`
	Status   BookingStatus `json:"status"`
}

// BookingState is the caller-facing filter token for booking listings.
// It mixes two independent axes: a time window (CURRENT/PAST/FUTURE) and a
// status (WAITING/REJECTED).
type BookingState string

const (
	StateAll      BookingState = "ALL"
	StateCurrent  BookingState = "CURRENT"
	StatePast     BookingState = "PAST"
	StateFuture   BookingState = "FUTURE"
	StateWaiting  BookingState = "WAITING"
	StateRejected BookingState = "REJECTED"
)

// ParseBookingState parses a state token case-insensitively. The unknown
// literal is echoed back in the error so the caller sees what was rejected.
func ParseBookingState(raw string) (BookingState, error) {
	switch state := BookingState(strings.ToUpper(strings.TrimSpace(raw))); state {
	case StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected:
		return state, nil
	default:
		return "", fmt.Errorf("unknown state: %s", raw)
	}
}

type scopeKind int

const (
	scopeBooker scopeKind = iota
	scopeOwner
)

// BookingScope restricts a booking query to either the booker or the item's
// owner — exactly one, never both.
type BookingScope struct {
	kind   scopeKind
	userID int64
}

func ScopeBooker(userID int64) BookingScope {
	return BookingScope{kind: scopeBooker, userID: userID}
}

func ScopeOwner(userID int64) BookingScope {
	return BookingScope{kind: scopeOwner, userID: userID}
}

func (s BookingScope) BookerID() (int64, bool) {
	return s.userID, s.kind == scopeBooker
}

func (s BookingScope) OwnerID() (int64, bool) {
	return s.userID, s.kind == scopeOwner
}

// BookingFilter is the fully-specified predicate the storage layer executes.
// Nil bounds mean "no constraint".
type BookingFilter struct {
	Scope       BookingScope
	StartBefore *time.Time
	StartAfter  *time.Time
	EndBefore   *time.Time
	EndAfter    *time.Time
	Status      *BookingStatus
}

// FilterForState translates a state token into concrete field constraints
// relative to now. Pure function over the closed state set; unknown tokens
// are rejected earlier by ParseBookingState.
func FilterForState(scope BookingScope, state BookingState, now time.Time) BookingFilter {
	filter := BookingFilter{Scope: scope}
	switch state {
	case StateCurrent:
		filter.StartBefore = &now
		filter.EndAfter = &now
	case StatePast:
		filter.EndBefore = &now
	case StateFuture:
		filter.StartAfter = &now
	case StateWaiting:
		status := StatusWaiting
		filter.Status = &status
	case StateRejected:
		status := StatusRejected
		filter.Status = &status
	}
	// StateAll adds no constraints.
	return filter
}
