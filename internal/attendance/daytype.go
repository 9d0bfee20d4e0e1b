package attendance

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrUnknownDayType is returned when a wire code does not name a DayType
var ErrUnknownDayType = errors.New("unknown day type")

// DayType classifies a calendar day
type DayType int

const (
	DayTypeWork DayType = iota + 1
	DayTypeHalfWork
	DayTypeDayOff
	DayTypeAnnualLeave
	DayTypeHalfAnnualLeave
	DayTypePublicHoliday
	DayTypeSpecialHoliday
)

var (
	one  = decimal.NewFromInt(1)
	half = decimal.New(5, -1)
)

// dayTypes is the single source of truth for codes and weights.
// Adding a variant without a row here makes Valid() false for it.
var dayTypes = map[DayType]struct {
	code   string
	name   string
	weight decimal.Decimal // contribution to countable days
	leave  decimal.Decimal // contribution to annual leave usage
}{
	DayTypeWork:            {code: "X1", name: "WORK", weight: one, leave: decimal.Zero},
	DayTypeHalfWork:        {code: "1/2 WORK", name: "HALF_WORK", weight: half, leave: decimal.Zero},
	DayTypeDayOff:          {code: "DO", name: "DAY_OFF", weight: decimal.Zero, leave: decimal.Zero},
	DayTypeAnnualLeave:     {code: "AL", name: "ANNUAL_LEAVE", weight: one, leave: one},
	DayTypeHalfAnnualLeave: {code: "1/2 AL", name: "HALF_ANNUAL_LEAVE", weight: half, leave: half},
	DayTypePublicHoliday:   {code: "PH", name: "PUBLIC_HOLIDAY", weight: one, leave: decimal.Zero},
	DayTypeSpecialHoliday:  {code: "SH", name: "SPECIAL_HOLIDAY", weight: one, leave: decimal.Zero},
}

// AllDayTypes lists every variant in display order
func AllDayTypes() []DayType {
	return []DayType{
		DayTypeWork,
		DayTypeHalfWork,
		DayTypeDayOff,
		DayTypeAnnualLeave,
		DayTypeHalfAnnualLeave,
		DayTypePublicHoliday,
		DayTypeSpecialHoliday,
	}
}

// Valid reports whether t is one of the declared variants
func (t DayType) Valid() bool {
	_, ok := dayTypes[t]
	return ok
}

// Code returns the persisted wire code (e.g. "X1", "1/2 AL")
func (t DayType) Code() string {
	return dayTypes[t].code
}

func (t DayType) String() string {
	if info, ok := dayTypes[t]; ok {
		return info.name
	}
	return fmt.Sprintf("DayType(%d)", int(t))
}

// Weight is the countable contribution of the day (0, 0.5 or 1)
func (t DayType) Weight() decimal.Decimal {
	if info, ok := dayTypes[t]; ok {
		return info.weight
	}
	return decimal.Zero
}

// LeaveWeight is the annual leave consumed by the day (0, 0.5 or 1)
func (t DayType) LeaveWeight() decimal.Decimal {
	if info, ok := dayTypes[t]; ok {
		return info.leave
	}
	return decimal.Zero
}

// IsWorked reports whether an auto-clock signal may mark the day as attended
func (t DayType) IsWorked() bool {
	switch t {
	case DayTypeWork, DayTypeHalfWork, DayTypeAnnualLeave, DayTypeHalfAnnualLeave:
		return true
	}
	return false
}

// Label returns the calendar label; WORK shows the user's shift code
func (t DayType) Label(shiftCode string) string {
	switch t {
	case DayTypeWork:
		return shiftCode
	case DayTypeHalfWork:
		return "1/2 " + shiftCode
	}
	return t.Code()
}

// ParseDayType accepts a wire code ("AL") or a variant name ("ANNUAL_LEAVE")
func ParseDayType(s string) (DayType, error) {
	for t, info := range dayTypes {
		if s == info.code || s == info.name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDayType, s)
}

// MarshalText encodes the wire code
func (t DayType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownDayType, int(t))
	}
	return []byte(t.Code()), nil
}

// UnmarshalText decodes a wire code or variant name
func (t *DayType) UnmarshalText(b []byte) error {
	parsed, err := ParseDayType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
