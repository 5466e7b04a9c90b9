package models

// WorkerType categorises roster members.
type WorkerType string

const (
	WorkerTypeNurse WorkerType = "NURSE"
	WorkerTypeOther WorkerType = "OTHER"
)

// ContractType describes the employment basis of a worker.
type ContractType string

const (
	// ContractEmployment is a regular employment contract; absence days
	// adjust the monthly hour norm.
	ContractEmployment ContractType = "EMPLOYMENT_CONTRACT"
	// ContractCivil is a civil-law contract; the hour norm is taken as is.
	ContractCivil ContractType = "CIVIL_CONTRACT"
)

// WorkersInfo carries per-worker roster attributes keyed by worker name.
type WorkersInfo struct {
	Type     map[string]WorkerType   `json:"type"`
	Contract map[string]ContractType `json:"contract"`
	Norm     map[string]int          `json:"norm"`
	Team     map[string]string       `json:"team"`
}

// Clone returns a deep copy of the workers info.
func (w WorkersInfo) Clone() WorkersInfo {
	return WorkersInfo{
		Type:     cloneMap(w.Type),
		Contract: cloneMap(w.Contract),
		Norm:     cloneMap(w.Norm),
		Team:     cloneMap(w.Team),
	}
}

func cloneMap[V any](src map[string]V) map[string]V {
	if src == nil {
		return nil
	}
	dst := make(map[string]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
