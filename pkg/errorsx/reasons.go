package errorsx

// ReasonCode is a short machine-readable error reason.
type ReasonCode string

const (
	ReasonUnknown ReasonCode = "unknown"

	ReasonMissingIdentity ReasonCode = "missing_identity"

	ReasonSinkDelivery    ReasonCode = "sink_delivery"
	ReasonSinkPanic       ReasonCode = "sink_panic"
	ReasonSinkCircuitOpen ReasonCode = "sink_circuit_open"
	ReasonSinkConfig      ReasonCode = "sink_config"

	ReasonObserverPanic ReasonCode = "observer_panic"
	ReasonConfigDecode  ReasonCode = "config_decode"
)
