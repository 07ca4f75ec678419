package models

// ProcessRequest asks for a single scene analysis. Source may be a local
// file path, an http(s) URL, or an Azure blob URL.
type ProcessRequest struct {
	Source string `json:"source" binding:"required"`
}

// BatchProcessRequest asks for a full directory run
type BatchProcessRequest struct {
	Directory string `json:"directory" binding:"required"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
