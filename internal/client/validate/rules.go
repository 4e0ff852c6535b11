package validate

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Rule is a single check with the message reported when it fails.
type Rule struct {
	Field   string
	Check   func() bool
	Message string
}

// Apply runs rules in order and reports the first failure per field.
func Apply(rules ...Rule) error {
	errs := New()
	for _, r := range rules {
		if errs.Has(r.Field) {
			continue
		}
		if !r.Check() {
			errs.Add(r.Field, r.Message)
		}
	}
	return errs.OrNil()
}

func Required(field, value, message string) Rule {
	return Rule{
		Field:   field,
		Check:   func() bool { return strings.TrimSpace(value) != "" },
		Message: message,
	}
}

func MinLen(field, value string, min int, message string) Rule {
	return Rule{
		Field:   field,
		Check:   func() bool { return utf8.RuneCountInString(value) >= min },
		Message: message,
	}
}

func MaxLen(field, value string, max int) Rule {
	return Rule{
		Field:   field,
		Check:   func() bool { return utf8.RuneCountInString(value) <= max },
		Message: fmt.Sprintf("Must be at most %d characters", max),
	}
}

func Email(field, value string) Rule {
	return Rule{
		Field: field,
		Check: func() bool {
			addr, err := mail.ParseAddress(value)
			if err != nil || addr.Address != value {
				return false
			}
			at := strings.LastIndex(value, "@")
			return at > 0 && strings.Contains(value[at+1:], ".")
		},
		Message: "Please enter a valid email address",
	}
}

func Equal(field, value, other, message string) Rule {
	return Rule{
		Field:   field,
		Check:   func() bool { return value == other },
		Message: message,
	}
}

func OneOf[T comparable](field string, value T, allowed []T, message string) Rule {
	return Rule{
		Field: field,
		Check: func() bool {
			for _, a := range allowed {
				if value == a {
					return true
				}
			}
			return false
		},
		Message: message,
	}
}
