package valueobject

import (
	"strings"
	"unicode/utf8"

	"github.com/oksasatya/medication-reminder/internal/domain/errs"
)

// MinPasswordLength is the minimum number of characters after trimming.
const MinPasswordLength = 6

const redacted = "********"

// Password holds a raw password on its way to the authentication boundary.
// It is never persisted; String is redacted so it cannot leak into logs.
type Password struct {
	value string
}

// NewPassword trims raw and enforces the minimum length.
func NewPassword(raw string) (Password, error) {
	normalized := strings.TrimSpace(raw)
	if utf8.RuneCountInString(normalized) < MinPasswordLength {
		return Password{}, errs.New(errs.InvalidPassword, "valueobject.NewPassword", "invalid password")
	}
	return Password{value: normalized}, nil
}

// Value exposes the raw secret. Only credential checks and hashing call it.
func (p Password) Value() string { return p.value }

func (p Password) String() string   { return redacted }
func (p Password) GoString() string { return redacted }
