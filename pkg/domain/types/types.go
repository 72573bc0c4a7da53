package types

// Version is the calculator version reported by the health endpoint.
const Version = "3.0.0"

// ServiceName is used in logs and the root endpoint.
const ServiceName = "prism-brain"

// RiskID identifies a risk in the catalog, e.g. "P1.1".
type RiskID string

// UpdateID identifies a probability update audit record (UUID).
type UpdateID string

func (x RiskID) String() string   { return string(x) }
func (x UpdateID) String() string { return string(x) }
