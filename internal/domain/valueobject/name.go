package valueobject

import (
	"strings"
	"unicode/utf8"

	"github.com/oksasatya/medication-reminder/internal/domain/errs"
)

// MaxNameLength bounds display names.
const MaxNameLength = 120

// Name is a display name with surrounding and repeated inner whitespace removed.
type Name struct {
	value string
}

func NewName(raw string) (Name, error) {
	normalized := strings.Join(strings.Fields(raw), " ")
	if normalized == "" || utf8.RuneCountInString(normalized) > MaxNameLength {
		return Name{}, errs.New(errs.InvalidName, "valueobject.NewName", "invalid name")
	}
	return Name{value: normalized}, nil
}

func (n Name) Value() string  { return n.value }
func (n Name) String() string { return n.value }
