package service

import (
	"regexp"
	"time"

	"github.com/ascmontjoie/club-portal-backend/internal/types"
)

// ============================================
// Approval payloads
// ============================================

// One payload shape per approval action. The same structs travel through
// the direct-apply path, the queue and the executor, so an approved
// request applies exactly the fields the requester submitted.

type PlayerPayload struct {
	Firstname     string  `json:"firstname"`
	Lastname      string  `json:"lastname"`
	Birthdate     *string `json:"birthdate,omitempty"`
	LicenceNumber *string `json:"licence_number,omitempty"`
	Position      *string `json:"position,omitempty"`
	TeamID        string  `json:"team_id"`
}

type PlayerUpdatePayload struct {
	PlayerID string `json:"player_id"`
	PlayerPayload
}

type PlayerRefPayload struct {
	PlayerID string `json:"player_id"`
}

type PlayerMovePayload struct {
	PlayerID string `json:"player_id"`
	TeamID   string `json:"team_id"`
}

type SessionPayload struct {
	TeamID    string  `json:"team_id"`
	Weekday   string  `json:"weekday"`
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
	Location  *string `json:"location,omitempty"`
}

type SessionRefPayload struct {
	SessionID string `json:"session_id"`
}

type TeamPayload struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Pole     *string `json:"pole,omitempty"`
}

// ============================================
// Structural validation
// ============================================

// Validation runs before any write, for direct applies and for enqueues
// alike, so malformed requests never reach an admin's queue.

var timeOfDayRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

const birthdateLayout = "2006-01-02"

func validatePlayerPayload(p *PlayerPayload) error {
	if p.Firstname == "" {
		return validationErr("firstname", "is required")
	}
	if p.Lastname == "" {
		return validationErr("lastname", "is required")
	}
	if p.TeamID == "" {
		return validationErr("team_id", "is required")
	}
	if p.Birthdate != nil {
		if _, err := time.Parse(birthdateLayout, *p.Birthdate); err != nil {
			return validationErr("birthdate", "must be YYYY-MM-DD")
		}
	}
	return nil
}

func validateSessionPayload(p *SessionPayload) error {
	if p.TeamID == "" {
		return validationErr("team_id", "is required")
	}
	if !types.IsValidWeekday(p.Weekday) {
		return validationErr("weekday", "is not a valid weekday")
	}
	if !timeOfDayRe.MatchString(p.StartTime) {
		return validationErr("start_time", "must be HH:MM")
	}
	if !timeOfDayRe.MatchString(p.EndTime) {
		return validationErr("end_time", "must be HH:MM")
	}
	if p.EndTime <= p.StartTime {
		return validationErr("end_time", "must be after start_time")
	}
	return nil
}

func validateTeamPayload(p *TeamPayload) error {
	if p.Name == "" {
		return validationErr("name", "is required")
	}
	if !types.IsValidCategory(p.Category) {
		return validationErr("category", "is not a valid category")
	}
	return nil
}
