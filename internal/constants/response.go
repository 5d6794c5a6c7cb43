package constants

// Standard Response Field Keys
const (
	ResponseFieldStatus       = "status"
	ResponseFieldMessage      = "message"
	ResponseFieldPage         = "page"
	ResponseFieldTotalPages   = "total_pages"
	ResponseFieldRecordsShown = "records_shown"
	ResponseFieldData         = "data"
)

// BuildErrorResponse builds the {status, message} body shared by every non-200 reply.
func BuildErrorResponse(status, message string) map[string]any {
	return map[string]any{
		ResponseFieldStatus:  status,
		ResponseFieldMessage: message,
	}
}

// BuildBadRequestResponse wraps joined validation messages.
func BuildBadRequestResponse(message string) map[string]any {
	return BuildErrorResponse(StatusBadRequest, message)
}

// BuildInternalErrorResponse never carries error details; those stay in the server log.
func BuildInternalErrorResponse() map[string]any {
	return BuildErrorResponse(StatusError, MsgInternalError)
}
