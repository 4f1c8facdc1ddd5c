package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical/docqa/internal/domain"
)

func TestValidate(t *testing.T) {
	v := New(20)

	tests := []struct {
		name     string
		text     string
		wantKind domain.ErrorKind
	}{
		{"empty", "", domain.KindEmptyContent},
		{"whitespace only", " \n\t\r  ", domain.KindEmptyContent},
		{"too short", "Hello", domain.KindContentTooShort},
		{"nineteen runes", strings.Repeat("é", 19), domain.KindContentTooShort},
		{"padding does not count", "   " + strings.Repeat("a", 19) + "\n\n", domain.KindContentTooShort},
		{"exactly twenty runes", strings.Repeat("é", 20), ""},
		{"invalid utf-8", "valid prefix long enough \xff\xfe", domain.KindExtractionFailed},
		{"nul byte", "this text is long enough\x00", domain.KindExtractionFailed},
		{"ordinary text", "Revenue grew 12% in Q3 compared to Q2.", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.Validate(tt.text)
			if tt.wantKind == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.text, got)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, domain.KindOf(err))
			assert.Empty(t, got)
		})
	}
}

func TestValidate_Idempotent(t *testing.T) {
	v := New(0)
	assert.Equal(t, DefaultMinContentChars, v.MinChars())

	text := "  A paragraph with leading space and enough characters.  \n"
	once, err := v.Validate(text)
	require.NoError(t, err)
	twice, err := v.Validate(once)
	require.NoError(t, err)
	assert.Equal(t, text, twice)
}

func TestValidate_CustomMinimum(t *testing.T) {
	v := New(3)
	_, err := v.Validate("abc")
	assert.NoError(t, err)
	_, err = v.Validate("ab")
	assert.Equal(t, domain.KindContentTooShort, domain.KindOf(err))
}
