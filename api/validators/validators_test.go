package validators

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/discountsync/pkg/errors"
)

type selectionBody struct {
	ScopeID int64 `json:"scope_id" validate:"required,gt=0"`
}

func TestDecodeJSONBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"scope_id":10}`))
	var body selectionBody
	if err := DecodeJSONBody(req, &body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body.ScopeID != 10 {
		t.Fatalf("expected scope 10, got %d", body.ScopeID)
	}
}

func TestDecodeJSONBodyRejectsUnknownAndMissing(t *testing.T) {
	for _, payload := range []string{`{"scope":10}`, `{}`, `not json`} {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload))
		var body selectionBody
		err := DecodeJSONBody(req, &body)
		if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("payload %s: expected validation error, got %v", payload, err)
		}
	}
}

func TestDecodeJSONBodyRejectsEmptyAndTrailing(t *testing.T) {
	for _, payload := range []string{``, `{"scope_id":10}{"scope_id":11}`} {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload))
		var body selectionBody
		if err := DecodeJSONBody(req, &body); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("payload %q: expected validation error, got %v", payload, err)
		}
	}
}

func TestDecodeJSONBodyFieldMessages(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"scope_id":-3}`))
	var body selectionBody
	err := DecodeJSONBody(req, &body)

	var typed *pkgerrors.Error
	if !errors.As(err, &typed) {
		t.Fatalf("expected typed error, got %v", err)
	}
	details, _ := typed.Details().(map[string]string)
	if details["scope_id"] != "must be greater than 0" {
		t.Fatalf("unexpected details %v", typed.Details())
	}
}

func TestParseQueryID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?scope=12", nil)
	id, ok, err := ParseQueryID(req, "scope")
	if err != nil || !ok || id != 12 {
		t.Fatalf("expected 12, got %d ok=%v err=%v", id, ok, err)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok, err := ParseQueryID(req, "scope"); ok || err != nil {
		t.Fatalf("missing value should be absent, got ok=%v err=%v", ok, err)
	}

	req = httptest.NewRequest(http.MethodGet, "/?scope=abc", nil)
	if _, _, err := ParseQueryID(req, "scope"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
