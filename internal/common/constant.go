package common

const (
	// MaxMessageLength is the upper bound, in UTF-16 code units, of a trimmed
	// message.
	MaxMessageLength = 1500

	// TokenQueryParam is the query parameter that may carry the access token
	// on the WebSocket upgrade request.
	TokenQueryParam = "token"
)
