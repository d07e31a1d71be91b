package services

import "fmt"

// ErrorKind classifies a ServiceError for the transport layer.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindConflict   ErrorKind = "conflict"
	KindAuth       ErrorKind = "auth"
	KindUpstream   ErrorKind = "upstream"
)

// ServiceError is the error type returned by the credential and catalog
// services. Message is safe to show to API callers; Err is not.
type ServiceError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s/%s: %s (%v)", e.Kind, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s/%s: %s", e.Kind, e.Code, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Is matches on kind and code, so the exported sentinels work with errors.Is
// even when the returned error carries a cause.
func (e *ServiceError) Is(target error) bool {
	t, ok := target.(*ServiceError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

func newError(kind ErrorKind, code, message string) *ServiceError {
	return &ServiceError{Kind: kind, Code: code, Message: message}
}

var (
	ErrInvalidName     = newError(KindValidation, "invalid_name", "Name is required and must be a string.")
	ErrInvalidEmail    = newError(KindValidation, "invalid_email", "A valid email is required.")
	ErrInvalidMobile   = newError(KindValidation, "invalid_mobile", "Mobile number must be integers only.")
	ErrWeakPassword    = newError(KindValidation, "weak_password", "Password must be at least 8 characters long, including one uppercase letter, one lowercase letter, and one digit.")
	ErrMissingLogin    = newError(KindValidation, "missing_credentials", "Email and password are required.")
	ErrInvalidProduct  = newError(KindValidation, "invalid_product_name", "Name is required and must be a string.")
	ErrInvalidPrice    = newError(KindValidation, "invalid_price", "Price is required and must be a non-negative number.")
	ErrInvalidAttrs    = newError(KindValidation, "invalid_attributes", "Attributes are required and each must have a name and a value.")
	ErrDuplicateAttr   = newError(KindValidation, "duplicate_attribute", "Each attribute name may appear only once.")
	ErrImageRequired   = newError(KindValidation, "image_required", "Image is required. Please upload a file or provide an image URL.")
	ErrInvalidFileType = newError(KindValidation, "invalid_file_type", "Invalid file type. Only jpeg, jpg, png are allowed.")
	ErrFileTooLarge    = newError(KindValidation, "file_too_large", "Uploaded file is too large.")

	ErrEmailExists  = newError(KindConflict, "email_exists", "Email already exists.")
	ErrMobileExists = newError(KindConflict, "mobile_exists", "Mobile Number already exists.")

	ErrInvalidCredentials = newError(KindAuth, "invalid_credentials", "Invalid email or password.")
	ErrMissingToken       = newError(KindAuth, "missing_token", "Access denied. No token provided.")
	ErrInvalidToken       = newError(KindAuth, "invalid_token", "Invalid or expired token.")

	ErrUpstream = newError(KindUpstream, "server_error", "Server error.")
)

// upstream wraps a store or storage failure.
func upstream(err error) error {
	return &ServiceError{Kind: KindUpstream, Code: ErrUpstream.Code, Message: ErrUpstream.Message, Err: err}
}
