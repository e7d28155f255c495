package models

// HealthCheckResponse returns the health check response struct
type HealthCheckResponse struct {
	Alive bool `json:"alive"`
}

// ValidateCodeResponse is the outcome of an access code validation. Reason is
// only set when the code is not valid.
type ValidateCodeResponse struct {
	Valid  bool   `json:"valid"`
	CodeID string `json:"codeId,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// LoginResponse is returned on a successful dashboard login
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
	CodeID    string `json:"codeId,omitempty"`
}

// CleanupResponse reports how many access code documents a cleanup removed
type CleanupResponse struct {
	Deleted int64 `json:"deleted"`
}
