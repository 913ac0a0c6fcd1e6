package people

import (
	"github.com/jrsteele09/evangelism-tracker/internal/utils"
	"github.com/jrsteele09/evangelism-tracker/internal/validation"
)

var messages = validation.Messages{
	"full_name": "Full name is required",
	"status":    "Status is required",
	"report_id": "Valid report ID is required",
}

// Validate trims the optional phone number before checking, so a blank
// phone is sent as absent.
func (p *Payload) Validate() error {
	if p.PhoneNumber != nil {
		p.PhoneNumber = utils.OptionalString(*p.PhoneNumber)
	}
	return validation.Struct(p, messages)
}

func (u Update) Validate() error {
	return validation.Struct(u, messages)
}
