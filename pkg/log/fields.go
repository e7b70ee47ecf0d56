package log

const (
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	FieldUserID = "user_id"
	FieldToken  = "token"
	FieldView   = "view"

	FieldService = "service"
)

const headerRequestID = "X-Request-ID"
