package repository

import (
	"errors"
	"time"

	"github.com/okian/staffnote/pkg/metrics"
)

// Observe records latency and outcome of one store call. Backends defer it
// with a pointer to their named error result.
func Observe(kind, operation string, start time.Time, err *error) {
	outcome := "ok"
	if err != nil && *err != nil {
		outcome = "error"
		if errors.Is(*err, ErrNotFound) {
			outcome = "not_found"
		}
	}
	metrics.RecordStoreOperation(kind, operation, outcome, float64(time.Since(start).Microseconds())/1000)
}
