package forms

import (
	"reflect"
	"strings"

	pkgerrors "github.com/angelmondragon/discountsync/pkg/errors"
	"github.com/angelmondragon/discountsync/pkg/i18n"
	"github.com/angelmondragon/discountsync/pkg/types"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// DiscountForm is the raw discount edit form as entered by the user.
type DiscountForm struct {
	DiscountType string
	DurationType string
	AppliesTo    string
	DayOfWeek    string
	StartTime    string
	EndTime      string
	StartAt      string
	EndAt        string
	Active       bool
	Amount       string
	Percentage   string
	ItemIDs      []int64
}

// AssignmentForm is the raw assignment form; nil ids mean nothing was selected.
type AssignmentForm struct {
	ItemID     *int64
	DiscountID *int64
}

// NormalizeDiscountForm trims, parses and validates the form. The form itself is never modified.
func NormalizeDiscountForm(form DiscountForm) (*types.DiscountPayload, error) {
	amount, err := ParseAmountCents(form.Amount)
	if err != nil {
		return nil, err
	}
	percentage, err := ParsePercentage(form.Percentage)
	if err != nil {
		return nil, err
	}

	payload := &types.DiscountPayload{
		DiscountType: strings.TrimSpace(form.DiscountType),
		DurationType: TrimOptional(form.DurationType),
		AppliesTo:    TrimOptional(form.AppliesTo),
		DayOfWeek:    TrimOptional(form.DayOfWeek),
		StartTime:    TrimOptional(form.StartTime),
		EndTime:      TrimOptional(form.EndTime),
		StartAt:      TrimOptional(form.StartAt),
		EndAt:        TrimOptional(form.EndAt),
		Active:       form.Active,
		AmountCents:  amount,
		Percentage:   percentage,
		ItemIDs:      dedupeIDs(form.ItemIDs),
	}
	if err := validate.Struct(payload); err != nil {
		return nil, formatValidationErrors(err, discountFieldMessages)
	}
	return payload, nil
}

// NormalizeAssignmentForm requires both an item and a discount selection.
func NormalizeAssignmentForm(form AssignmentForm) (*types.AssignmentPayload, error) {
	payload := &types.AssignmentPayload{}
	if form.ItemID != nil {
		payload.ItemID = *form.ItemID
	}
	if form.DiscountID != nil {
		payload.DiscountID = *form.DiscountID
	}
	if err := validate.Struct(payload); err != nil {
		return nil, formatValidationErrors(err, assignmentFieldMessages)
	}
	return payload, nil
}

var discountFieldMessages = map[string]i18n.Message{
	"discount_type": i18n.DiscountTypeRequired,
	"item_ids":      i18n.DiscountItemsRequired,
	"amount":        i18n.InvalidAmount,
}

var assignmentFieldMessages = map[string]i18n.Message{
	"item_id":     i18n.AssignmentItemRequired,
	"discount_id": i18n.AssignmentDiscountRequired,
}

// formatValidationErrors reports the first failing field as the error message and every field in details.
func formatValidationErrors(err error, messages map[string]i18n.Message) *pkgerrors.Error {
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
	}
	details := map[string]string{}
	var first *i18n.Message
	for _, fieldErr := range errs {
		field := fieldName(fieldErr)
		msg, known := messages[field]
		if !known {
			details[field] = "is invalid"
			continue
		}
		details[field] = msg.Key
		if first == nil {
			m := msg
			first = &m
		}
	}
	if first == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return pkgerrors.New(pkgerrors.CodeValidation, first.Fallback).WithKey(first.Key).WithDetails(details)
}

// fieldName strips dive indexes such as item_ids[0].
func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	if idx := strings.IndexByte(name, '['); idx >= 0 {
		return name[:idx]
	}
	return name
}

func dedupeIDs(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
