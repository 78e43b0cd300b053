// Package valueobject holds the self-validating wrappers used by the user
// aggregate. Construction is the only validation gate.
package valueobject

import (
	"regexp"
	"strings"

	"github.com/oksasatya/medication-reminder/internal/domain/errs"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Email is a trimmed, lower-cased address of the form local@domain.tld.
type Email struct {
	value string
}

// NewEmail normalizes raw and validates its shape.
func NewEmail(raw string) (Email, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if !emailPattern.MatchString(normalized) {
		return Email{}, errs.New(errs.InvalidEmail, "valueobject.NewEmail", "invalid email")
	}
	return Email{value: normalized}, nil
}

func (e Email) Value() string  { return e.value }
func (e Email) String() string { return e.value }

// LocalPart returns the part before '@'.
func (e Email) LocalPart() string {
	local, _, _ := strings.Cut(e.value, "@")
	return local
}

func (e Email) IsZero() bool { return e.value == "" }
