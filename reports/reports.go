package reports

import "time"

// Report is one outreach event as stored by the API.
type Report struct {
	ID              string    `json:"id"`
	EvangelistID    string    `json:"evangelist_id"`
	OutreachName    string    `json:"outreach_name"`
	Location        string    `json:"location"`
	Date            string    `json:"date"` // YYYY-MM-DD
	HeardCount      int       `json:"heard_count"`
	InterestedCount int       `json:"interested_count"`
	AcceptedCount   int       `json:"accepted_count"`
	RepentedCount   int       `json:"repented_count"`
	Notes           *string   `json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Payload is the body for creating a report.
type Payload struct {
	OutreachName    string  `json:"outreach_name" validate:"min=2"`
	Location        string  `json:"location" validate:"min=2"`
	Date            string  `json:"date" validate:"required"`
	HeardCount      int     `json:"heard_count" validate:"gte=0"`
	InterestedCount int     `json:"interested_count" validate:"gte=0"`
	AcceptedCount   int     `json:"accepted_count" validate:"gte=0"`
	RepentedCount   int     `json:"repented_count" validate:"gte=0"`
	Notes           *string `json:"notes,omitempty" validate:"omitnil,max=1000"`
}

// Update is a partial payload; nil fields are left as they are.
type Update struct {
	OutreachName    *string `json:"outreach_name,omitempty" validate:"omitnil,min=2"`
	Location        *string `json:"location,omitempty" validate:"omitnil,min=2"`
	Date            *string `json:"date,omitempty" validate:"omitnil,min=1"`
	HeardCount      *int    `json:"heard_count,omitempty" validate:"omitnil,gte=0"`
	InterestedCount *int    `json:"interested_count,omitempty" validate:"omitnil,gte=0"`
	AcceptedCount   *int    `json:"accepted_count,omitempty" validate:"omitnil,gte=0"`
	RepentedCount   *int    `json:"repented_count,omitempty" validate:"omitnil,gte=0"`
	Notes           *string `json:"notes,omitempty" validate:"omitnil,max=1000"`
}

// Apply copies the set fields of u onto r.
func (u Update) Apply(r *Report) {
	if u.OutreachName != nil {
		r.OutreachName = *u.OutreachName
	}
	if u.Location != nil {
		r.Location = *u.Location
	}
	if u.Date != nil {
		r.Date = *u.Date
	}
	if u.HeardCount != nil {
		r.HeardCount = *u.HeardCount
	}
	if u.InterestedCount != nil {
		r.InterestedCount = *u.InterestedCount
	}
	if u.AcceptedCount != nil {
		r.AcceptedCount = *u.AcceptedCount
	}
	if u.RepentedCount != nil {
		r.RepentedCount = *u.RepentedCount
	}
	if u.Notes != nil {
		r.Notes = u.Notes
	}
}
