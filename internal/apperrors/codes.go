package apperrors

// Code classifies an application error for transport mapping.
type Code string

const (
	CodeUnknown          Code = "UNKNOWN"
	CodeValidation       Code = "VALIDATION"
	CodeAuth             Code = "AUTH"
	CodePermissionDenied Code = "PERMISSION_DENIED"
	CodeNotFound         Code = "NOT_FOUND"
	CodeAlreadyExists    Code = "ALREADY_EXISTS"
	CodeInvalidState     Code = "INVALID_STATE"
	CodeUpload           Code = "UPLOAD_FAILED"
	CodeEmailDelivery    Code = "EMAIL_DELIVERY"
	CodeInternal         Code = "INTERNAL"
)
