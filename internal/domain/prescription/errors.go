package prescription

import "errors"

var (
	ErrPrescriptionNotFound    = errors.New("prescription not found")
	ErrInvalidStatusTransition = errors.New("invalid prescription status transition")
	ErrSafetyAlert             = errors.New("prescription blocked by a medication safety alert")
)
