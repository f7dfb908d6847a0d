package handlers

// StatusResponse is returned by health endpoints.
type StatusResponse struct {
	Status string `json:"status"`
	Kind   string `json:"kind,omitempty"`
}
