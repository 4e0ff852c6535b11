// Package validate implements client-side form checks that run before any
// request is sent.
package validate

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// ErrInvalid is matched by every *Errors value.
var ErrInvalid = errors.New("validation failed")

// Errors collects messages per form field.
type Errors struct {
	fields url.Values
}

func New() *Errors {
	return &Errors{fields: url.Values{}}
}

// FromFields builds Errors from a DRF-style {"field": ["msg"]} body.
func FromFields(fields map[string][]string) *Errors {
	e := New()
	for f, msgs := range fields {
		for _, m := range msgs {
			e.Add(f, m)
		}
	}
	return e
}

func (e *Errors) Add(field, message string) {
	e.fields.Add(field, message)
}

// Get returns the first message for field.
func (e *Errors) Get(field string) string {
	return e.fields.Get(field)
}

func (e *Errors) Has(field string) bool {
	return len(e.fields[field]) > 0
}

// Fields lists the failing fields in sorted order.
func (e *Errors) Fields() []string {
	out := make([]string, 0, len(e.fields))
	for f := range e.fields {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Map returns a copy of the messages keyed by field, the shape the REST API
// uses for 400 bodies.
func (e *Errors) Map() map[string][]string {
	out := make(map[string][]string, len(e.fields))
	for f, msgs := range e.fields {
		out[f] = append([]string(nil), msgs...)
	}
	return out
}

func (e *Errors) IsEmpty() bool {
	return e == nil || len(e.fields) == 0
}

func (e *Errors) Error() string {
	if e.IsEmpty() {
		return ErrInvalid.Error()
	}
	parts := make([]string, 0, len(e.fields))
	for _, f := range e.Fields() {
		parts = append(parts, fmt.Sprintf("%s: %s", f, e.fields.Get(f)))
	}
	return ErrInvalid.Error() + ": " + strings.Join(parts, "; ")
}

func (e *Errors) Is(target error) bool {
	return target == ErrInvalid
}

// OrNil returns nil when nothing was collected.
func (e *Errors) OrNil() error {
	if e.IsEmpty() {
		return nil
	}
	return e
}

// Extract returns the *Errors wrapped in err, or nil.
func Extract(err error) *Errors {
	var ve *Errors
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}
