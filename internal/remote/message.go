package remote

import (
	"encoding/json"
	"sort"
	"strings"
)

// extractMessage finds a human readable message in an error body. It
// understands {"error":{"message"}}, {"message"}, {"error":"..."} and
// {"errors":{field:[msg]}}, and returns "" for anything else.
func extractMessage(body []byte) string {
	var payload struct {
		Error   json.RawMessage `json:"error"`
		Message json.RawMessage `json:"message"`
		Errors  json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	if len(payload.Error) > 0 {
		var nested struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(payload.Error, &nested) == nil {
			if msg := strings.TrimSpace(nested.Message); msg != "" {
				return msg
			}
		}
	}
	if msg := stringValue(payload.Message); msg != "" {
		return msg
	}
	if msg := stringValue(payload.Error); msg != "" {
		return msg
	}
	return firstFieldError(payload.Errors)
}

func firstFieldError(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err == nil {
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if msg := firstString(fields[name]); msg != "" {
				return msg
			}
		}
		return ""
	}
	return firstString(raw)
}

func firstString(raw json.RawMessage) string {
	if msg := stringValue(raw); msg != "" {
		return msg
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return ""
	}
	for _, msg := range list {
		if trimmed := strings.TrimSpace(msg); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func stringValue(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}
