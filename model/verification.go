package model

// VerificationResult is the outcome of AI image verification. It is a total
// record: every field is populated even when the upstream model call fails
// outright, in which case the flags are null, confidence is "low" and the
// status is "unverifiable". Downstream report status updates depend on
// VerificationStatus always being present.
type VerificationResult struct {
	IsAuthentic        *bool   `json:"is_authentic"`
	IsDisaster         *bool   `json:"is_disaster"`
	DisasterType       *string `json:"disaster_type"`
	Confidence         string  `json:"confidence"`
	Analysis           string  `json:"analysis"`
	VerificationStatus string  `json:"verification_status"`
}
