package assembler

import (
	"time"

	"github.com/rezonia/invoice-generator/internal/model"
)

const (
	// DateLayout is the only accepted input date form
	DateLayout = "2006-01-02"
	// LongDateLayout is the display form stored on the record
	LongDateLayout = "January 02, 2006"
)

// ParseDate parses a strict YYYY-MM-DD calendar date. The field name is
// used in the returned DateFormatError.
func ParseDate(field, value string) (time.Time, error) {
	if len(value) != len(DateLayout) {
		return time.Time{}, model.NewDateFormatError(field, value, nil)
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, model.NewDateFormatError(field, value, err)
	}
	return t, nil
}

// DueDate adds dueDays calendar days to the invoice date
func DueDate(invoiceDate time.Time, dueDays int) time.Time {
	return invoiceDate.AddDate(0, 0, dueDays)
}

// FormatLongDate renders a date as "Month DD, YYYY"
func FormatLongDate(t time.Time) string {
	return t.Format(LongDateLayout)
}
