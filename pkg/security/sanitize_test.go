package security

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/workgrid/studio/pkg/domain"
)

func TestValidateIdentifier(t *testing.T) {
	valid := []string{"max_connections", "wait_timeout", "Sort_Buffer_Size", "innodb1"}
	for _, name := range valid {
		assert.NoError(t, ValidateIdentifier(name), name)
	}

	invalid := []string{
		"",
		"max; DROP TABLE x",
		"name with space",
		"quote'name",
		"back`tick",
		"dash-name",
		"ütf8",
	}
	for _, name := range invalid {
		err := ValidateIdentifier(name)
		assert.Error(t, err, name)
		var invalidErr *domain.ErrInvalidIdentifier
		assert.ErrorAs(t, err, &invalidErr, name)
	}
}

func TestEscapeValue(t *testing.T) {
	assert.Equal(t, "plain", EscapeValue("plain"))
	assert.Equal(t, "it''s", EscapeValue("it's"))
	assert.Equal(t, `C:\\tmp`, EscapeValue(`C:\tmp`))
	assert.Equal(t, `\\''`, EscapeValue(`\'`))
	assert.Equal(t, "", EscapeValue(""))
}

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, "`app`", QuoteIdentifier("app"))
	assert.Equal(t, "`we``ird`", QuoteIdentifier("we`ird"))
}
