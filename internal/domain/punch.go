package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrMissingDescription = errors.New("start punch has to have a description")
	ErrMissingCostCentre  = errors.New("start punch has to have a customer cost centre")
	ErrBreakUnsupported   = errors.New("starting a BREAK is not supported")
	ErrInvalidPunchType   = errors.New("invalid punch type")
)

type PunchType string

const (
	PunchTypeBreak  PunchType = "BREAK"
	PunchTypeLogin  PunchType = "LOGIN"
	PunchTypeLogout PunchType = "LOGOUT"
)

// PunchTypes lists every punch type the API knows about
var PunchTypes = []PunchType{PunchTypeBreak, PunchTypeLogin, PunchTypeLogout}

// ParsePunchType parses a punch type case-insensitively
func ParsePunchType(s string) (PunchType, error) {
	pt := PunchType(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range PunchTypes {
		if pt == known {
			return pt, nil
		}
	}
	return "", fmt.Errorf("%w: %q (expected one of BREAK, LOGIN, LOGOUT)", ErrInvalidPunchType, s)
}

// TimestampLayout is the layout the punch API uses for timestamps
const TimestampLayout = time.RFC3339

// CostCentre is the customer cost centre attached to a punch
type CostCentre struct {
	ID          int64   `json:"id"`
	Code        *int64  `json:"code,omitempty"`
	Name        string  `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type User struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Punch is a worktime punch line as returned by the API
type Punch struct {
	ID                 int64       `json:"id"`
	Type               PunchType   `json:"type"`
	Description        string      `json:"description"`
	Timestamp          time.Time   `json:"timestamp"`
	RealTimestamp      time.Time   `json:"realTimestamp"`
	Source             string      `json:"source,omitempty"`
	CustomerCostcentre *CostCentre `json:"customerCostcentre"`
	User               *User       `json:"user,omitempty"`
}

// CostCentreName returns the cost centre name or "" if the punch has none
func (p *Punch) CostCentreName() string {
	if p.CustomerCostcentre == nil {
		return ""
	}
	return p.CustomerCostcentre.Name
}

// NewPunch is the body of a punch creation request
type NewPunch struct {
	Type               PunchType      `json:"type"`
	Description        string         `json:"description,omitempty"`
	CustomerCostcentre *CostCentreRef `json:"customerCostcentre,omitempty"`
	Timestamp          string         `json:"timestamp"`
	RealTimestamp      string         `json:"realTimestamp"`
}

// CostCentreRef references a cost centre by id in a request
type CostCentreRef struct {
	ID int64 `json:"id"`
}

// NewPunchRequest wraps NewPunch the way the API expects it
type NewPunchRequest struct {
	NewPunch NewPunch `json:"newPunch"`
}

// NewLoginPunch builds a request starting work on description
func NewLoginPunch(description string, costCentreID int64, now time.Time) (*NewPunchRequest, error) {
	if strings.TrimSpace(description) == "" {
		return nil, ErrMissingDescription
	}
	if costCentreID <= 0 {
		return nil, ErrMissingCostCentre
	}

	ts := now.Format(TimestampLayout)
	return &NewPunchRequest{
		NewPunch: NewPunch{
			Type:               PunchTypeLogin,
			Description:        description,
			CustomerCostcentre: &CostCentreRef{ID: costCentreID},
			Timestamp:          ts,
			RealTimestamp:      ts,
		},
	}, nil
}

// NewLogoutPunch builds a request stopping the current work
func NewLogoutPunch(now time.Time) *NewPunchRequest {
	ts := now.Format(TimestampLayout)
	return &NewPunchRequest{
		NewPunch: NewPunch{
			Type:          PunchTypeLogout,
			Timestamp:     ts,
			RealTimestamp: ts,
		},
	}
}
