package constants

// HTTP Header Names
const (
	HeaderContentType   = "Content-Type"
	HeaderUserAgent     = "User-Agent"
	HeaderXRequestID    = "X-Request-ID"
	HeaderXForwardedFor = "X-Forwarded-For"
)

// Response status values carried in the "status" field
const (
	StatusSuccess         = "success"
	StatusBadRequest      = "Bad Request"
	StatusError           = "error"
	StatusTooManyRequests = "Too Many Requests"
)

// Response messages
const (
	MsgDataFetched        = "Data fetched successfully"
	MsgInternalError      = "Internal Server Error"
	MsgServiceUnavailable = "Service temporarily unavailable"
	MsgRateLimited        = "Rate limit exceeded"
)

// Route paths outside the dataset routes
const (
	PathHealth  = "/health"
	PathMetrics = "/metrics"
)
