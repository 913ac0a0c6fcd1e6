package apiclient

import (
	"encoding/json"
	"strings"

	errs "github.com/jrsteele09/evangelism-tracker/internal/errors"
)

// NormalizeMessage turns any error body the API may send into one line of
// text. Accepted shapes:
//
//	"plain string"
//	{"detail": "message"}
//	{"detail": [{"msg": "field required"}, ...]}   (first msg wins)
//	{"message": "message"}
//
// Anything else yields errs.GenericMessage.
func NormalizeMessage(body []byte) string {
	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return errs.GenericMessage
	}

	switch v := parsed.(type) {
	case string:
		if msg := strings.TrimSpace(v); msg != "" {
			return msg
		}
	case map[string]any:
		if msg := detailMessage(v["detail"]); msg != "" {
			return msg
		}
		if msg, ok := v["message"].(string); ok && strings.TrimSpace(msg) != "" {
			return strings.TrimSpace(msg)
		}
	}
	return errs.GenericMessage
}

func detailMessage(detail any) string {
	switch d := detail.(type) {
	case string:
		return strings.TrimSpace(d)
	case []any:
		for _, item := range d {
			switch entry := item.(type) {
			case map[string]any:
				if msg, ok := entry["msg"].(string); ok && strings.TrimSpace(msg) != "" {
					return strings.TrimSpace(msg)
				}
			case string:
				if strings.TrimSpace(entry) != "" {
					return strings.TrimSpace(entry)
				}
			}
		}
	case map[string]any:
		if msg, ok := d["msg"].(string); ok {
			return strings.TrimSpace(msg)
		}
	}
	return ""
}
