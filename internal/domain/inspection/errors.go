package inspection

import "errors"

var (
	// ErrInvalidInput is returned when no address was submitted.
	ErrInvalidInput = errors.New("at least one IP address is required")
	// ErrMonitoringUnavailable covers transport failures and non-success replies from the monitoring backend.
	ErrMonitoringUnavailable = errors.New("monitoring request failed")
	// ErrScoringUnavailable covers transport failures and non-success replies from the AI service.
	ErrScoringUnavailable = errors.New("ai analysis failed")
	// ErrScoringNotConfigured means no AI credentials were configured.
	ErrScoringNotConfigured = errors.New("ai service not configured")
)
