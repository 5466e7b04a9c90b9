package models

// WorkerHourInfo aggregates one worker's monthly hours. Overtime is always
// Actual - Required; it is never computed independently.
type WorkerHourInfo struct {
	Required int `json:"required"`
	Actual   int `json:"actual"`
	Overtime int `json:"overtime"`
}

// NewWorkerHourInfo builds the aggregate, deriving overtime from the other
// two fields.
func NewWorkerHourInfo(required, actual int) WorkerHourInfo {
	return WorkerHourInfo{
		Required: required,
		Actual:   actual,
		Overtime: actual - required,
	}
}
