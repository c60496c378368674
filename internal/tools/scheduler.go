package tools

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
)

// appointmentLeadTime is how far out pickup appointments are booked.
const appointmentLeadTime = 72 * time.Hour

// Scheduler books dog pickup appointments. It does not validate the dog
// id or name against the catalog: its only job is producing a plausible
// future slot, and the arguments come straight from the reasoning
// backend. Validation, if ever wanted, belongs to the orchestrator.
type Scheduler struct {
	now func() time.Time
}

// NewScheduler creates an appointment scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{now: time.Now}
}

// NewSchedulerWithClock creates a scheduler with an injected clock.
func NewSchedulerWithClock(now func() time.Time) *Scheduler {
	return &Scheduler{now: now}
}

// Schedule books a pickup appointment three days out and returns the
// slot as an RFC 3339 UTC instant. Total over all inputs: a non-existent
// dogID or empty dogName still gets a slot.
func (s *Scheduler) Schedule(dogID int, dogName string) string {
	when := s.now().Add(appointmentLeadTime).UTC().Format(time.RFC3339)
	log.Info().
		Int("dog_id", dogID).
		Str("dog_name", dogName).
		Str("scheduled_at", when).
		Msg("Appointment scheduled")
	return when
}

type scheduleArgs struct {
	DogID   int    `json:"dogId"`
	DogName string `json:"dogName"`
}

// Descriptor exposes the scheduler as a callable capability.
func (s *Scheduler) Descriptor() Descriptor {
	return Descriptor{
		Name:        "schedule_appointment",
		Description: "Schedule an appointment to pick up or adopt a dog",
		Parameters: []Parameter{
			{Name: "dogId", Type: "integer", Description: "the id of the dog", Required: true},
			{Name: "dogName", Type: "string", Description: "the name of the dog", Required: true},
		},
		Handler: func(_ context.Context, args json.RawMessage) (string, error) {
			var in scheduleArgs
			if err := json.Unmarshal(args, &in); err != nil {
				// Malformed arguments are reported back to the model,
				// not escalated: the tool is total over its inputs.
				return "invalid arguments: " + err.Error(), nil
			}
			return s.Schedule(in.DogID, in.DogName), nil
		},
	}
}
