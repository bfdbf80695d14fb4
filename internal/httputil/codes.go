package httputil

// Machine-readable error codes returned in ErrorResponse.Code
const (
	CodeInternalError      = "INTERNAL_ERROR"
	CodeInvalidRequestBody = "INVALID_REQUEST_BODY"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeTooManyRequests    = "TOO_MANY_REQUESTS"

	CodeInvalidAuthHeader = "INVALID_AUTH_HEADER"
	CodeMissingAuth       = "MISSING_AUTH"
	CodeTokenExpired      = "TOKEN_EXPIRED"
	CodeInvalidToken      = "INVALID_TOKEN"

	CodeProfileNotFound = "PROFILE_NOT_FOUND"
	CodeInvalidImage    = "INVALID_IMAGE"
	CodeImageTooLarge   = "IMAGE_TOO_LARGE"
	CodeUploadFailed    = "UPLOAD_FAILED"
	CodeUpdateFailed    = "UPDATE_FAILED"
	CodeStreamingFailed = "STREAMING_UNSUPPORTED"
)
