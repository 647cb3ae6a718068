package booking

import "github.com/careslot/careslot/internal/domain/doctor"

// ConfirmationPolicy decides the initial status of a newly admitted
// booking. It is an interface so alternate rules, such as manual
// confirmation for certain doctor tiers, can be swapped in without
// touching the admission flow.
type ConfirmationPolicy interface {
	Decide(d *doctor.Doctor) Status
}

// AutoConfirmPolicy confirms every admitted booking immediately. This is
// the live rule: an approved, patient-accepting doctor needs no manual
// confirmation step.
type AutoConfirmPolicy struct{}

func (AutoConfirmPolicy) Decide(_ *doctor.Doctor) Status { return StatusConfirmed }

// ManualConfirmPolicy leaves new bookings pending until the doctor
// confirms them.
type ManualConfirmPolicy struct{}

func (ManualConfirmPolicy) Decide(_ *doctor.Doctor) Status { return StatusPending }
