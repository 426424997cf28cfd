package model

import (
	"errors"

	"github.com/m-mizutani/goerr/v2"
)

// Sentinel errors shared by every layer. Each is wrapped with goerr.Wrap at the
// point of failure so that errors.Is keeps working through the chain.
var (
	ErrValidation   = goerr.New("validation error")
	ErrSchemaFetch  = goerr.New("failed to fetch dataset schema")
	ErrSchemaFormat = goerr.New("invalid dataset schema format")
	ErrSubmission   = goerr.New("failed to submit form")
	ErrStore        = goerr.New("template store error")
	ErrDownload     = goerr.New("failed to download result")
	ErrNotFound     = goerr.New("not found")
)

// Context keys for error values
const (
	TemplateIDKey = "template_id"
	FieldNameKey  = "field_name"
	StatusKey     = "status"
	EndpointKey   = "endpoint"
	// DetailKey holds the short, user-facing description of a failure
	DetailKey = "detail"
)

// Detail returns the innermost user-facing detail attached with goerr.V(DetailKey, ...).
// The error text itself is returned when no detail was attached.
func Detail(err error) string {
	if err == nil {
		return ""
	}

	var detail string
	for e := err; e != nil; e = errors.Unwrap(e) {
		ge, ok := e.(*goerr.Error)
		if !ok {
			continue
		}
		if v, ok := ge.Values()[DetailKey].(string); ok && v != "" {
			detail = v
		}
	}

	if detail == "" {
		return err.Error()
	}
	return detail
}
