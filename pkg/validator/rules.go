package validator

import (
	"fmt"
	"net/mail"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

// E.164 with optional leading plus.
var phoneRegex = regexp.MustCompile(`^\+?[1-9]\d{6,14}$`)

// Required validates that a string is not empty after trimming whitespace.
func Required(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return strings.TrimSpace(value) != ""
		},
		Error: ValidationError{
			Field:   field,
			Message: "field is required",
			Code:    "required",
			Params:  map[string]any{
				"field": field,
			},
		},
	}
}

// MinLen validates the rune length of value.
func MinLen(field, value string, min int) Rule {
	return Rule{
		Check: func() bool {
			return utf8.RuneCountInString(value) >= min
		},
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be at least %d characters long", min),
			Code:    "min_length",
			Params:  map[string]any{
				"field": field,
				"min":   min,
			},
		},
	}
}

// MaxLen validates the rune length of value.
func MaxLen(field, value string, max int) Rule {
	return Rule{
		Check: func() bool {
			return utf8.RuneCountInString(value) <= max
		},
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be at most %d characters long", max),
			Code:    "max_length",
			Params:  map[string]any{
				"field": field,
				"max":   max,
			},
		},
	}
}

// ValidEmail validates a bare address such as "name@example.org".
func ValidEmail(field, value string) Rule {
	return Rule{
		Check: func() bool {
			value = strings.TrimSpace(value)
			if value == "" {
				return false
			}
			addr, err := mail.ParseAddress(value)
			if err != nil || addr.Address != value {
				return false
			}
			local, domain, ok := strings.Cut(value, "@")
			if !ok || local == "" || len(local) > 64 {
				return false
			}
			return strings.Contains(domain, ".") &&
				!strings.HasPrefix(domain, ".") &&
				!strings.HasSuffix(domain, ".")
		},
		Error: ValidationError{
			Field:   field,
			Message: "must be a valid email address",
			Code:    "email",
			Params:  map[string]any{
				"field": field,
			},
		},
	}
}

// ValidPhone validates an international phone number. Spaces and dashes are ignored.
func ValidPhone(field, value string) Rule {
	return Rule{
		Check: func() bool {
			cleaned := strings.NewReplacer(" ", "", "-", "").Replace(value)
			return phoneRegex.MatchString(cleaned)
		},
		Error: ValidationError{
			Field:   field,
			Message: "must be a valid phone number in international format",
			Code:    "phone",
			Params:  map[string]any{
				"field": field,
			},
		},
	}
}

// OneOf validates that value is in options.
func OneOf(field, value string, options []string) Rule {
	return Rule{
		Check: func() bool {
			return slices.Contains(options, value)
		},
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(options, ", ")),
			Code:    "one_of",
			Params:  map[string]any{
				"field":   field,
				"options": options,
			},
		},
	}
}

// ValidRole validates that value names a known role.
func ValidRole(field, value string, allowedRoles []string) Rule {
	return Rule{
		Check: func() bool {
			return slices.Contains(allowedRoles, value)
		},
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("role must be one of: %s", strings.Join(allowedRoles, ", ")),
			Code:    "valid_role",
			Params:  map[string]any{
				"field":         field,
				"allowed_roles": allowedRoles,
			},
		},
	}
}
