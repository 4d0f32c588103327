package metrics

import "time"

// Recorder observes verification outcomes, session issuance, and gate
// decisions without binding the library to a metrics backend.
type Recorder interface {
	IncCounter(name string, labels map[string]string)
	ObserveLatency(name string, duration time.Duration, labels map[string]string)
}
