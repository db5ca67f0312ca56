package model

// ErrorResponse is the standard envelope for error responses.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the structured error information returned by the API.
type ErrorDetail struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// FieldError is a single validation diagnostic. Validation is exhaustive,
// so a response carries one FieldError per violated field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// ValidationErrorResponse is the envelope for site-data validation failures.
type ValidationErrorResponse struct {
	Errors []FieldError `json:"errors"`
}
