package models

// ShiftCode identifies a shift assignment for one worker on one day.
type ShiftCode string

const (
	ShiftMorning      ShiftCode = "R"  // rano, 7-15
	ShiftAfternoon    ShiftCode = "P"  // popoludnie, 15-19
	ShiftDay          ShiftCode = "D"  // dzien, 7-19
	ShiftNight        ShiftCode = "N"  // noc, 19-7
	ShiftDayNight     ShiftCode = "DN" // 7-7, full day
	ShiftAfternoonN   ShiftCode = "PN" // 15-7
	ShiftFree         ShiftCode = "W"  // wolne
	ShiftUnpaidLeave  ShiftCode = "U"
	ShiftSickLeave    ShiftCode = "L4"
	ShiftNotScheduled ShiftCode = "NZ"
)

// Shift describes one entry of the shift-type catalogue.
type Shift struct {
	Code ShiftCode `json:"code"`
	Name string    `json:"name"`
	// From and To are hours of day; To <= From means the shift rolls into
	// the next calendar day.
	From     int `json:"from"`
	To       int `json:"to"`
	Duration int `json:"duration"`
	// RequiredRest is the minimum number of off-duty hours a worker needs
	// after finishing this shift before the next working shift may start.
	RequiredRest int  `json:"required_rest"`
	IsWorking    bool `json:"is_working"`
	// NormAdjusting marks absence codes that lower the monthly hour norm
	// for employment-contract workers.
	NormAdjusting bool `json:"norm_adjusting"`
}

// EndsNextDay reports whether the shift finishes on the following calendar day.
func (s Shift) EndsNextDay() bool {
	return s.To <= s.From && s.IsWorking
}

// ShiftCatalogue is the active shift-type table keyed by code.
type ShiftCatalogue map[ShiftCode]Shift

// DefaultShifts is the built-in catalogue used when no custom table is supplied.
var DefaultShifts = ShiftCatalogue{
	ShiftMorning:      {Code: ShiftMorning, Name: "morning", From: 7, To: 15, Duration: 8, RequiredRest: 11, IsWorking: true},
	ShiftAfternoon:    {Code: ShiftAfternoon, Name: "afternoon", From: 15, To: 19, Duration: 4, RequiredRest: 11, IsWorking: true},
	ShiftDay:          {Code: ShiftDay, Name: "day", From: 7, To: 19, Duration: 12, RequiredRest: 11, IsWorking: true},
	ShiftNight:        {Code: ShiftNight, Name: "night", From: 19, To: 7, Duration: 12, RequiredRest: 11, IsWorking: true},
	ShiftDayNight:     {Code: ShiftDayNight, Name: "day-night", From: 7, To: 7, Duration: 24, RequiredRest: 24, IsWorking: true},
	ShiftAfternoonN:   {Code: ShiftAfternoonN, Name: "afternoon-night", From: 15, To: 7, Duration: 16, RequiredRest: 16, IsWorking: true},
	ShiftFree:         {Code: ShiftFree, Name: "free"},
	ShiftUnpaidLeave:  {Code: ShiftUnpaidLeave, Name: "unpaid leave", NormAdjusting: true},
	ShiftSickLeave:    {Code: ShiftSickLeave, Name: "sick leave", NormAdjusting: true},
	ShiftNotScheduled: {Code: ShiftNotScheduled, Name: "not scheduled"},
}

// Contains reports whether the code exists in the catalogue.
func (c ShiftCatalogue) Contains(code ShiftCode) bool {
	_, ok := c[code]
	return ok
}

// Duration returns the work-hour duration of a code. Codes outside the
// catalogue count as free.
func (c ShiftCatalogue) Duration(code ShiftCode) int {
	return c[code].Duration
}

// IsWorking reports whether the code represents an on-duty shift. Unknown
// codes are treated as free.
func (c ShiftCatalogue) IsWorking(code ShiftCode) bool {
	return c[code].IsWorking
}

// IsNormAdjusting reports whether the code is an absence that adjusts the
// monthly hour norm.
func (c ShiftCatalogue) IsNormAdjusting(code ShiftCode) bool {
	return c[code].NormAdjusting
}
