package errors

// Error code constants returned to the dashboard client.
// Format: CATEGORY_SPECIFIC_DETAIL

const (
	// ==================== Auth (AUTH_) ====================
	AuthUnauthorized = "AUTH_UNAUTHORIZED" // sign-in required
	AuthTokenExpired = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid = "AUTH_TOKEN_INVALID"

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden = "AUTHZ_FORBIDDEN"
	AuthzOwnerOnly = "AUTHZ_OWNER_ONLY" // only the business owner may do this

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT"
	ValidationInvalidRange  = "VALIDATION_INVALID_RANGE"
	ValidationRequired      = "VALIDATION_REQUIRED"

	// ==================== Resource (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Business (BUSINESS_) ====================
	BusinessNotFound = "BUSINESS_NOT_FOUND"

	// ==================== Review (REVIEW_) ====================
	ReviewNotFound          = "REVIEW_NOT_FOUND"
	ReviewInvalidRating     = "REVIEW_INVALID_RATING"
	ReviewInvalidTransition = "REVIEW_INVALID_STATUS_TRANSITION" // status can only leave pending
	ReviewImportFailed      = "REVIEW_IMPORT_FAILED"

	// ==================== Reply (REPLY_) ====================
	ReplyNotFound = "REPLY_NOT_FOUND"

	// ==================== Template (TEMPLATE_) ====================
	TemplateNotFound = "TEMPLATE_NOT_FOUND"

	// ==================== Quota (QUOTA_) ====================
	QuotaExceeded = "QUOTA_EXCEEDED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError = "INTERNAL_SERVER_ERROR"
	InternalDatabase    = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI = "INTERNAL_EXTERNAL_API_ERROR"
	InternalStorage     = "INTERNAL_STORAGE_ERROR"
)

// Analysis function codes. The function keeps the lower-case vocabulary its
// clients already switch on.
const (
	FnConfigMissing   = "config_missing"
	FnValidationError = "validation_error"
	FnUnauthorized    = "unauthorized"
	FnQuotaExceeded   = "quota_exceeded"
	FnRateLimited     = "rate_limited"
	FnPaymentRequired = "payment_required"
	FnUpstreamError   = "upstream_error"
	FnParseError      = "parse_error"
	FnTimeout         = "timeout"
)
