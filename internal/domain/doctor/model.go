package doctor

import (
	"time"

	"github.com/google/uuid"
)

// Doctor maps to the doctor table. Approval and patient intake are the two
// flags the booking path checks before admitting an appointment.
type Doctor struct {
	ID                   uuid.UUID  `db:"id" json:"id"`
	FirstName            string     `db:"first_name" json:"first_name"`
	LastName             string     `db:"last_name" json:"last_name"`
	SpecialtyID          *uuid.UUID `db:"specialty_id" json:"specialty_id,omitempty"`
	Bio                  *string    `db:"bio" json:"bio,omitempty"`
	Phone                *string    `db:"phone" json:"phone,omitempty"`
	Email                *string    `db:"email" json:"email,omitempty"`
	Approved             bool       `db:"approved" json:"approved"`
	AcceptingNewPatients bool       `db:"accepting_new_patients" json:"accepting_new_patients"`
	CreatedAt            time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time  `db:"updated_at" json:"updated_at"`
}

// Bookable reports whether the doctor can currently receive new bookings.
func (d *Doctor) Bookable() bool {
	return d.Approved && d.AcceptingNewPatients
}

// DisplayName returns the doctor's full name.
func (d *Doctor) DisplayName() string {
	return d.FirstName + " " + d.LastName
}
