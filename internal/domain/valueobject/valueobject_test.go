package valueobject

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/medication-reminder/internal/domain/errs"
)

func TestNewEmail(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"plain", "test@example.com", "test@example.com", false},
		{"normalizes case and spaces", "  Ana@X.COM ", "ana@x.com", false},
		{"missing at", "invalid-email", "", true},
		{"missing tld", "ana@x", "", true},
		{"inner space", "an a@x.com", "", true},
		{"empty", "   ", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NewEmail(tc.raw)
			if tc.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errs.ErrInvalidEmail)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.Value())
		})
	}
}

func TestEmailNormalizationIsIdempotent(t *testing.T) {
	for _, raw := range []string{"A@B.co", " mixed.Case@Example.ORG", "x+tag@sub.domain.com"} {
		first, err := NewEmail(raw)
		require.NoError(t, err)
		second, err := NewEmail(first.Value())
		require.NoError(t, err)
		assert.Equal(t, first.Value(), second.Value())
	}
}

func TestEmailLocalPart(t *testing.T) {
	e, err := NewEmail("ana.souza@x.com")
	require.NoError(t, err)
	assert.Equal(t, "ana.souza", e.LocalPart())
}

func TestNewPasswordMinimumLength(t *testing.T) {
	for _, raw := range []string{"", "12345", "  12345  ", "abcde"} {
		_, err := NewPassword(raw)
		assert.ErrorIs(t, err, errs.ErrInvalidPassword, "%q", raw)
	}
	for _, raw := range []string{"123456", " senha123 ", strings.Repeat("x", 64)} {
		p, err := NewPassword(raw)
		require.NoError(t, err, "%q", raw)
		assert.Equal(t, strings.TrimSpace(raw), p.Value())
	}
}

func TestPasswordIsRedacted(t *testing.T) {
	p, err := NewPassword("senha123")
	require.NoError(t, err)
	assert.Equal(t, "********", p.String())
	assert.NotContains(t, fmt.Sprintf("%v %+v %#v", p, p, p), "senha123")
}

func TestNewName(t *testing.T) {
	n, err := NewName("  Ana   Maria ")
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", n.Value())

	_, err = NewName("")
	assert.ErrorIs(t, err, errs.ErrInvalidName)

	_, err = NewName(strings.Repeat("a", MaxNameLength+1))
	assert.ErrorIs(t, err, errs.ErrInvalidName)
}
