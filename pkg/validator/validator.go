package validator

import (
	"regexp"
	"strings"

	"github.com/artem13815/productivity/pkg/apperr"
)

var emailRegexp = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")

// Validator collects the first failure message per field.
type Validator struct {
	Errors map[string]string
}

func New() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

func (v *Validator) Valid() bool { return len(v.Errors) == 0 }

func (v *Validator) Check(ok bool, key, msg string) {
	if ok {
		return
	}
	if _, exists := v.Errors[key]; !exists {
		v.Errors[key] = msg
	}
}

func (v *Validator) Required(value, key string) {
	v.Check(strings.TrimSpace(value) != "", key, "must be provided")
}

func (v *Validator) Email(email string) {
	v.Required(email, "email")
	v.Check(email == "" || emailRegexp.MatchString(email), "email", "must be a valid email address")
}

// Password accepts 1..72 bytes; bcrypt ignores anything past 72.
func (v *Validator) Password(password string) {
	v.Check(password != "", "password", "must be provided")
	v.Check(len(password) <= 72, "password", "must be at most 72 bytes long")
}

func (v *Validator) OneOf(value, key string, allowed ...string) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v.Check(false, key, "must be one of: "+strings.Join(allowed, ", "))
}

// Err returns nil when valid, otherwise a validation error with msg and the field details.
func (v *Validator) Err(msg string) error {
	if v.Valid() {
		return nil
	}
	return apperr.ValidationFields(msg, v.Errors)
}

// NormalizeEmail is the canonical owner key: trimmed and lower-cased.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
