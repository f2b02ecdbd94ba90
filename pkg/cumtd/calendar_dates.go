package cumtd

import (
	"fmt"

	"cloud.google.com/go/civil"
)

// CalendarDatesQuery selects how calendar dates are requested.
// It is implemented only by CalendarDatesByDate and CalendarDatesByService.
type CalendarDatesQuery interface {
	calendarDatesRequest(key string) (Request, error)
}

// CalendarDatesByDate requests the calendar entries for one day.
type CalendarDatesByDate struct {
	Date civil.Date
}

// CalendarDatesByService requests the calendar entries of one service.
type CalendarDatesByService struct {
	ServiceID string
}

// FormatDate renders d as YYYY-MM-DD. It fails with a KindFormat error
// when d is not a real calendar day or its year needs more than four digits.
func FormatDate(d civil.Date) (string, error) {
	if !d.IsValid() {
		return "", &Error{Kind: KindFormat, Msg: fmt.Sprintf("invalid date %d-%d-%d", d.Year, d.Month, d.Day)}
	}
	if d.Year < 0 || d.Year > 9999 {
		return "", &Error{Kind: KindFormat, Msg: fmt.Sprintf("year %d out of range", d.Year)}
	}
	return d.String(), nil
}

// ParseDate parses YYYY-MM-DD text. It fails with a KindDecode error when
// the text is not a valid calendar day.
func ParseDate(text string) (civil.Date, error) {
	d, err := civil.ParseDate(text)
	if err != nil {
		return civil.Date{}, &Error{Kind: KindDecode, Msg: "invalid date", Err: err}
	}
	return d, nil
}

// wireDate decodes the service's date text through ParseDate.
type wireDate civil.Date

func (d *wireDate) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = wireDate(parsed)
	return nil
}
