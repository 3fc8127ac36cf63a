package models

type ValidationResult struct {
	Valid         bool   `json:"valid"`
	KeyMask       string `json:"key"`
	FirstSeen     string `json:"first_seen,omitempty"`
	ExpiresOn     string `json:"expires_on,omitempty"`
	DaysRemaining int    `json:"days_remaining"`
	Expired       bool   `json:"expired"`
	IsFirstUse    bool   `json:"is_first_use"`
}

// AnomalyResult is advisory. ShouldBlock is always false.
type AnomalyResult struct {
	IsAnomaly   bool   `json:"is_anomaly"`
	DeviceCount int    `json:"device_count"`
	Message     string `json:"warning_message,omitempty"`
	ShouldBlock bool   `json:"should_block"`
}

type AccessDecision struct {
	Granted    bool             `json:"granted"`
	Status     UsageStatus      `json:"status"`
	Validation ValidationResult `json:"validation"`
	Anomaly    AnomalyResult    `json:"anomaly"`
}

type AccessRequest struct {
	Key  string `json:"key"`
	Page string `json:"page"`
}
