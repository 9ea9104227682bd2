package errors

// Envelope is the wire form of an AppError: {"error": {...}}.
type Envelope struct {
	Error Problem `json:"error"`
}

// Problem is the client-visible part of an AppError. Cause stays local.
type Problem struct {
	Code      ErrorCode      `json:"code"`
	Message   string         `json:"message"`
	Status    int            `json:"status,omitempty"`
	Retryable bool           `json:"retryable"`
	RequestID string         `json:"request_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// ToResponse renders e for a response body.
func (e *AppError) ToResponse() Envelope {
	return Envelope{Error: Problem{
		Code:      e.Code,
		Message:   e.Message,
		Status:    e.HTTPStatus,
		Retryable: e.Retryable,
		Details:   e.Details,
	}}
}

// WithRequestID stamps the correlation id a server assigned to the call.
func (env Envelope) WithRequestID(id string) Envelope {
	env.Error.RequestID = id
	return env
}

// ProblemOf extracts a Problem from a decoded HTTP_STATUS payload, as
// returned by Payload, when the server answered with an Envelope.
func ProblemOf(err error) (Problem, bool) {
	payload, ok := Payload(err)
	if !ok {
		return Problem{}, false
	}
	body, ok := payload.(map[string]any)
	if !ok {
		return Problem{}, false
	}
	inner, ok := body["error"].(map[string]any)
	if !ok {
		return Problem{}, false
	}
	code, _ := inner["code"].(string)
	if code == "" {
		return Problem{}, false
	}
	p := Problem{Code: ErrorCode(code)}
	p.Message, _ = inner["message"].(string)
	p.Retryable, _ = inner["retryable"].(bool)
	p.RequestID, _ = inner["request_id"].(string)
	p.Details, _ = inner["details"].(map[string]any)
	if status, ok := inner["status"].(float64); ok {
		p.Status = int(status)
	}
	return p, true
}
