// Package validate checks inbound request payloads against the wire
// contracts the ingestion API enforces, turning violations into a
// single apierr.Error carrying one FieldDetail per failed field.
package validate

import (
	"fmt"

	"fraudpipeline/internal/apierr"
	"fraudpipeline/internal/fraudmodel"
)

const (
	maxClientIDLen          = 256
	maxDeviceFingerprintLen = 512
	minSignalBatch          = 1
	maxSignalBatch          = 1000
)

// CreateSession validates a session creation request.
func CreateSession(req fraudmodel.CreateSessionRequest) *apierr.Error {
	var details []apierr.FieldDetail

	if req.ClientID == "" {
		details = append(details, apierr.FieldDetail{Field: "clientId", Message: "required"})
	} else if len(req.ClientID) > maxClientIDLen {
		details = append(details, apierr.FieldDetail{Field: "clientId", Message: fmt.Sprintf("must be at most %d characters", maxClientIDLen)})
	}

	if req.DeviceFingerprint == "" {
		details = append(details, apierr.FieldDetail{Field: "deviceFingerprint", Message: "required"})
	} else if len(req.DeviceFingerprint) > maxDeviceFingerprintLen {
		details = append(details, apierr.FieldDetail{Field: "deviceFingerprint", Message: fmt.Sprintf("must be at most %d characters", maxDeviceFingerprintLen)})
	}

	if len(details) > 0 {
		return apierr.Validation("invalid session request", details...)
	}
	return nil
}

// AppendSignals validates a batch of inbound signals.
func AppendSignals(req fraudmodel.AppendSignalsRequest) *apierr.Error {
	var details []apierr.FieldDetail

	count := len(req.Signals)
	if count < minSignalBatch || count > maxSignalBatch {
		details = append(details, apierr.FieldDetail{
			Field:   "signals",
			Message: fmt.Sprintf("batch size must be between %d and %d, got %d", minSignalBatch, maxSignalBatch, count),
		})
	}

	for i, sig := range req.Signals {
		if sig.Type == "" {
			details = append(details, apierr.FieldDetail{Field: fmt.Sprintf("signals[%d].type", i), Message: "required"})
		}
		if sig.Timestamp <= 0 {
			details = append(details, apierr.FieldDetail{Field: fmt.Sprintf("signals[%d].timestamp", i), Message: "must be > 0"})
		}
		if sig.Payload == nil {
			details = append(details, apierr.FieldDetail{Field: fmt.Sprintf("signals[%d].payload", i), Message: "must not be null"})
		}
	}

	if len(details) > 0 {
		return apierr.Validation("invalid signal batch", details...)
	}
	return nil
}
