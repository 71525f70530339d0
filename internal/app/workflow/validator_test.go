package workflow

import (
	"errors"
	"testing"

	"github.com/sifan077/snipr/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeAlias(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"my link!@#", "mylink"},
		{"my-awesome_link", "my-awesome_link"},
		{"ünïcødé", "ncd"},
		{"a/b?c=d&e#f", "abcdef"},
		{"   ", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeAlias(tt.in), "input %q", tt.in)
	}
}

func TestIsValidURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"https://example.com/some/long/path?q=1", true},
		{"  http://example.com  ", true},
		{"ftp://files.example.com/x", true},
		{"not a url", false},
		{"example.com", false},
		{"/relative/path", false},
		{"https://", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsValidURL(tt.in), "input %q", tt.in)
	}
}

func TestURLHint(t *testing.T) {
	assert.Equal(t, "", URLHint(""))
	assert.Equal(t, "✓ Valid URL", URLHint("https://example.com"))
	assert.Equal(t, "✗ Invalid URL format", URLHint("example"))
}

func TestMinExpirationDate(t *testing.T) {
	assert.Equal(t, "2026-10-20", MinExpirationDate(testNow))
}

func TestValidate(t *testing.T) {
	valid := model.FormState{
		SourceURL:        "https://example.com/a",
		ExpirationOption: model.ExpirationNever,
	}

	tests := []struct {
		name   string
		mutate func(*model.FormState)
		field  string
	}{
		{"valid never", func(f *model.FormState) {}, ""},
		{"valid seven days", func(f *model.FormState) { f.ExpirationOption = model.ExpirationSevenDays }, ""},
		{"valid custom tomorrow", func(f *model.FormState) {
			f.ExpirationOption = model.ExpirationCustom
			f.ExpirationDate = "2026-10-20"
		}, ""},
		{"not a url", func(f *model.FormState) { f.SourceURL = "not a url" }, "URL"},
		{"blank url", func(f *model.FormState) { f.SourceURL = "   " }, "URL"},
		{"bad alias", func(f *model.FormState) { f.CustomAlias = "bad alias" }, "CustomAlias"},
		{"custom without date", func(f *model.FormState) { f.ExpirationOption = model.ExpirationCustom }, "ExpirationDate"},
		{"custom today", func(f *model.FormState) {
			f.ExpirationOption = model.ExpirationCustom
			f.ExpirationDate = "2026-10-19"
		}, "ExpirationDate"},
		{"custom garbage date", func(f *model.FormState) {
			f.ExpirationOption = model.ExpirationCustom
			f.ExpirationDate = "tomorrow"
		}, "ExpirationDate"},
		{"unknown option", func(f *model.FormState) { f.ExpirationOption = "forever" }, "Option"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := valid
			tt.mutate(&form)

			err := Validate(form, testNow)
			if tt.field == "" {
				assert.NoError(t, err)
				assert.True(t, CanSubmit(form, testNow))
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidationIncomplete))
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Contains(t, vErr.Fields, tt.field)
			assert.False(t, CanSubmit(form, testNow))
		})
	}
}

func TestNormalize(t *testing.T) {
	req := Normalize(model.FormState{
		SourceURL:        "  https://example.com  ",
		CustomAlias:      " promo ",
		ExpirationOption: model.ExpirationOneDay,
		ExpirationDate:   "2026-12-01",
	})
	assert.Equal(t, "https://example.com", req.URL)
	assert.Equal(t, "promo", req.CustomAlias)
	assert.Nil(t, req.ExpirationDate)

	req = Normalize(model.FormState{
		SourceURL:        "https://example.com",
		ExpirationOption: model.ExpirationCustom,
		ExpirationDate:   "2026-12-01",
	})
	require.NotNil(t, req.ExpirationDate)
	assert.Equal(t, "2026-12-01", *req.ExpirationDate)
}
