package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/discountsync/pkg/errors"
	"github.com/angelmondragon/discountsync/pkg/forms"
)

// ParseQueryID reads a positive identifier from the query string. Missing
// values return (0, false, nil).
func ParseQueryID(r *http.Request, key string) (int64, bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, false, nil
	}
	id, err := forms.ParseID(raw)
	if err != nil {
		return 0, false, err
	}
	if id == nil {
		return 0, false, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be an identifier").WithDetails(map[string]any{"field": key})
	}
	return *id, true, nil
}

func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").WithDetails(map[string]any{"field": key})
	}
	if value < min || value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter out of range").WithDetails(map[string]any{"field": key, "min": min, "max": max})
	}
	return value, nil
}
