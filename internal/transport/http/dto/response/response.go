package response

const (
	statusSuccess = "success"
	statusError   = "error"
	statusOK      = "ok"
)

// Response wraps every successful gallery payload.
type Response struct {
	Status  string      `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorResponse is the body of every non-2xx reply. Error is a stable machine
// readable code, Details is meant for people.
type ErrorResponse struct {
	Status  string `json:"status"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func SuccessResponse(data interface{}) Response {
	return Response{
		Status: statusSuccess,
		Data:   data,
	}
}

func Healthy() Response {
	return Response{Status: statusOK}
}

// WithDetails returns a copy of e carrying details.
func (e ErrorResponse) WithDetails(details string) ErrorResponse {
	e.Details = details
	return e
}
