package people

import "time"

// Status is how far a person has responded to the message.
type Status string

const (
	StatusInterested Status = "interested"
	StatusAccepted   Status = "accepted"
	StatusRepented   Status = "repented"
)

// Person is someone met during an outreach, attached to one report.
type Person struct {
	ID          string    `json:"id"`
	ReportID    string    `json:"report_id"`
	FullName    string    `json:"full_name"`
	PhoneNumber *string   `json:"phone_number"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Payload is the body for creating a person.
type Payload struct {
	FullName    string  `json:"full_name" validate:"min=2"`
	PhoneNumber *string `json:"phone_number,omitempty"`
	Status      Status  `json:"status" validate:"oneof=interested accepted repented"`
	ReportID    string  `json:"report_id" validate:"uuid"`
}

// Update is a partial payload; nil fields are left as they are.
type Update struct {
	FullName    *string `json:"full_name,omitempty" validate:"omitnil,min=2"`
	PhoneNumber *string `json:"phone_number,omitempty"`
	Status      *Status `json:"status,omitempty" validate:"omitnil,oneof=interested accepted repented"`
	ReportID    *string `json:"report_id,omitempty" validate:"omitnil,uuid"`
}

func (u Update) Apply(p *Person) {
	if u.FullName != nil {
		p.FullName = *u.FullName
	}
	if u.PhoneNumber != nil {
		p.PhoneNumber = u.PhoneNumber
	}
	if u.Status != nil {
		p.Status = *u.Status
	}
	if u.ReportID != nil {
		p.ReportID = *u.ReportID
	}
}
