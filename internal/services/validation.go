package services

import (
	"errors"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultMaxUploadBytes bounds product image uploads when no limit is configured.
const DefaultMaxUploadBytes int64 = 10 * 1024 * 1024

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	allowedImageExts  = map[string]bool{".jpeg": true, ".jpg": true, ".png": true}
	allowedImageTypes = []string{"image/jpeg", "image/png"}

	validate = newValidator()
)

// RegistrationInput is the identity submitted at registration. Field order is
// the order in which rejections are reported.
type RegistrationInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,mailbox"`
	Mobile   string `json:"mobile" validate:"required,digits"`
	Password string `json:"password" validate:"required,strong_password"`
}

// AttributeInput is one dynamic attribute of a new product.
type AttributeInput struct {
	Name  string `json:"name" validate:"required"`
	Value string `json:"value" validate:"required"`
}

// ImageUpload is an uploaded product image. Body must be positioned at the
// start of the file.
type ImageUpload struct {
	Filename string
	Size     int64
	Body     io.ReadSeeker
}

// ProductInput is the raw add-product request. Price is kept as text so that
// "present and numeric" can be checked here rather than by the decoder.
type ProductInput struct {
	Name        string `validate:"required"`
	Description string
	Price       string `validate:"required,price"`
	Category    string
	Attributes  []AttributeInput `validate:"required,min=1,dive"`
	Photo       string
	Upload      *ImageUpload `validate:"-"`

	// CreatedBy is the authenticated caller, recorded in the log only.
	CreatedBy uuid.UUID `validate:"-"`
}

// ValidatedProduct is a ProductInput that passed ValidateProductInput.
type ValidatedProduct struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Category    string
	Attributes  []AttributeInput

	// Exactly one image source is set: Upload (with its sniffed ContentType)
	// or PhotoURL.
	Upload      *ImageUpload
	ContentType string
	Extension   string
	PhotoURL    string
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	rules := map[string]validator.Func{
		"mailbox": func(fl validator.FieldLevel) bool {
			return emailPattern.MatchString(fl.Field().String())
		},
		"digits": func(fl validator.FieldLevel) bool {
			return isDigits(fl.Field().String())
		},
		"strong_password": func(fl validator.FieldLevel) bool {
			return IsValidPassword(fl.Field().String())
		},
		"price": func(fl validator.FieldLevel) bool {
			_, err := parsePrice(fl.Field().String())
			return err == nil
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic("services: register validation " + tag + ": " + err.Error())
		}
	}

	return v
}

// IsValidPassword reports whether password is at least 8 characters long and
// has an ASCII lowercase letter, an ASCII uppercase letter and a digit. Other
// characters count towards the length only.
func IsValidPassword(password string) bool {
	if utf8.RuneCountInString(password) < 8 {
		return false
	}

	var lower, upper, digit bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	return lower && upper && digit
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func parsePrice(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, errors.New("negative price")
	}
	return d, nil
}

// ValidateRegistration checks name, email, mobile and password in that order
// and reports the first failure.
func ValidateRegistration(in RegistrationInput) (RegistrationInput, error) {
	err := validate.Struct(in)
	if err == nil {
		return in, nil
	}

	switch firstInvalidField(err) {
	case "Name":
		return in, ErrInvalidName
	case "Email":
		return in, ErrInvalidEmail
	case "Mobile":
		return in, ErrInvalidMobile
	default:
		return in, ErrWeakPassword
	}
}

// validateLogin checks presence of both fields before the email shape.
func validateLogin(email, password string) error {
	if email == "" || password == "" {
		return ErrMissingLogin
	}
	if err := validate.Var(email, "mailbox"); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

// ValidateProductInput checks name, price, attributes and image source in
// that order. An uploaded file takes precedence over a photo URL.
func ValidateProductInput(in ProductInput, maxUploadBytes int64) (ValidatedProduct, error) {
	if err := validate.Struct(in); err != nil {
		switch firstInvalidField(err) {
		case "Name":
			return ValidatedProduct{}, ErrInvalidProduct
		case "Price":
			return ValidatedProduct{}, ErrInvalidPrice
		default:
			return ValidatedProduct{}, ErrInvalidAttrs
		}
	}

	seen := make(map[string]bool, len(in.Attributes))
	for _, attr := range in.Attributes {
		if seen[attr.Name] {
			return ValidatedProduct{}, ErrDuplicateAttr
		}
		seen[attr.Name] = true
	}

	price, _ := parsePrice(in.Price)
	out := ValidatedProduct{
		Name:        in.Name,
		Description: in.Description,
		Price:       price,
		Category:    in.Category,
		Attributes:  in.Attributes,
	}

	switch photo := strings.TrimSpace(in.Photo); {
	case in.Upload != nil:
		contentType, ext, err := validateUpload(in.Upload, maxUploadBytes)
		if err != nil {
			return ValidatedProduct{}, err
		}
		out.Upload = in.Upload
		out.ContentType = contentType
		out.Extension = ext
	case photo != "":
		out.PhotoURL = photo
	default:
		return ValidatedProduct{}, ErrImageRequired
	}

	return out, nil
}

func validateUpload(u *ImageUpload, maxBytes int64) (string, string, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	if u.Size > maxBytes {
		return "", "", ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(u.Filename))
	if !allowedImageExts[ext] || u.Body == nil {
		return "", "", ErrInvalidFileType
	}

	mtype, err := mimetype.DetectReader(u.Body)
	if err != nil {
		return "", "", ErrInvalidFileType
	}
	if _, err := u.Body.Seek(0, io.SeekStart); err != nil {
		return "", "", upstream(err)
	}
	if !mimetype.EqualsAny(mtype.String(), allowedImageTypes...) {
		return "", "", ErrInvalidFileType
	}

	return mtype.String(), ext, nil
}

// firstInvalidField returns the top-level struct field of the first
// validation failure, e.g. "Attributes" for "ProductInput.Attributes[0].Name".
func firstInvalidField(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return ""
	}

	ns := verrs[0].StructNamespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	if i := strings.IndexAny(ns, ".["); i >= 0 {
		ns = ns[:i]
	}
	return ns
}
