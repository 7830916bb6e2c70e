// Package rename plans, executes and reverses date-based batch renames.
package rename

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/redate/internal/apperr"
	"github.com/starford/redate/internal/dateparts"
)

// Request describes one planning pass over a folder.
type Request struct {
	Folder         string            `json:"folder"`
	Prefix         string            `json:"prefix"`
	Layout         *dateparts.Layout `json:"layout"`
	ExpectedLength int               `json:"expected_length"`
	Separator      string            `json:"separator"`
}

var errPathSeparator = errors.New("must not contain a path separator")

func noPathSeparator(value any) error {
	s, _ := value.(string)
	if strings.ContainsAny(s, `/\`) {
		return errPathSeparator
	}
	return nil
}

// Validate returns an *apperr.ValidationError naming the first bad field.
func (r *Request) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Folder, validation.Required),
		validation.Field(&r.Layout, validation.NotNil, validation.Skip),
		validation.Field(&r.ExpectedLength, validation.Required, validation.Min(1)),
		validation.Field(&r.Prefix, validation.By(noPathSeparator)),
		validation.Field(&r.Separator, validation.By(noPathSeparator)),
	)
	if err != nil {
		return apperr.FromRules(err)
	}
	return r.Layout.Validate()
}
