package reports

import "github.com/jrsteele09/evangelism-tracker/internal/validation"

var messages = validation.Messages{
	"outreach_name":    "Outreach name is required",
	"location":         "Location is required",
	"date":             "Date is required",
	"heard_count":      "Value must be 0 or more",
	"interested_count": "Value must be 0 or more",
	"accepted_count":   "Value must be 0 or more",
	"repented_count":   "Value must be 0 or more",
	"notes":            "Keep notes concise",
}

func (p Payload) Validate() error {
	return validation.Struct(p, messages)
}

func (u Update) Validate() error {
	return validation.Struct(u, messages)
}
