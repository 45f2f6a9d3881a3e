package server

import (
	"errors"
	"net/http"
	"strings"

	authdomain "github.com/andreasgmg/fornet/internal/auth/domain"
	"github.com/andreasgmg/fornet/internal/authorization"
	"github.com/andreasgmg/fornet/internal/billing"
	bookingdomain "github.com/andreasgmg/fornet/internal/booking/domain"
	contentdomain "github.com/andreasgmg/fornet/internal/content/domain"
	documentdomain "github.com/andreasgmg/fornet/internal/document/domain"
	formdomain "github.com/andreasgmg/fornet/internal/form/domain"
	newsletterdomain "github.com/andreasgmg/fornet/internal/newsletter/domain"
	orgdomain "github.com/andreasgmg/fornet/internal/organization/domain"
	"github.com/andreasgmg/fornet/internal/siteaccess"
	"github.com/andreasgmg/fornet/pkg/db/pagination"
	"github.com/andreasgmg/fornet/pkg/repository"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrServiceUnavailable = errors.New("service_unavailable")
	ErrSiteLocked         = errors.New("site_locked")
	ErrTooManyRequests    = errors.New("too_many_requests")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

// respondSiteError answers public site actions. Validation and conflict
// failures become {"error": "<message>"} so the tenant page can show them
// inline; everything else goes through the standard error envelope.
func respondSiteError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	status := 0
	switch {
	case isValidationError(err):
		status = http.StatusBadRequest
	case isConflictError(err):
		status = http.StatusConflict
	default:
		AbortWithError(c, err)
		return
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": siteMessage(err)})
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case isUnauthorizedError(err):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrSiteLocked),
		errors.Is(err, siteaccess.ErrInvalidToken):
		return http.StatusUnauthorized, errorPayload{
			Type:    "site_locked",
			Message: "site password required",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authorization.ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, orgdomain.ErrProRequired):
		return http.StatusForbidden, errorPayload{
			Type:    "pro_required",
			Message: "a pro subscription is required",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "too_many_requests",
			Message: "too many requests",
		}
	case errors.Is(err, ErrServiceUnavailable),
		errors.Is(err, billing.ErrNotConfigured):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog feeds the request logger with the same taxonomy the
// client sees.
func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	code := payload.Type
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	} else if payload.Type == "conflict" {
		code = err.Error()
	}
	return payload.Type, code
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isUnauthorizedError(err error) bool {
	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authorization.ErrUnauthenticated),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrInvalidSession),
		errors.Is(err, authdomain.ErrSessionNotFound),
		errors.Is(err, authdomain.ErrSessionExpired),
		errors.Is(err, authdomain.ErrSessionRevoked):
		return true
	default:
		return false
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, pagination.ErrInvalidPageToken),
		errors.Is(err, billing.ErrInvalidSignature),
		errors.Is(err, billing.ErrInvalidPayload):
		return true
	case errors.Is(err, authdomain.ErrInvalidEmail),
		errors.Is(err, authdomain.ErrPasswordTooShort):
		return true
	case errors.Is(err, orgdomain.ErrInvalidName),
		errors.Is(err, orgdomain.ErrInvalidUser),
		errors.Is(err, orgdomain.ErrInvalidEmail),
		errors.Is(err, orgdomain.ErrInvalidRole),
		errors.Is(err, orgdomain.ErrInvalidAlertLevel),
		errors.Is(err, orgdomain.ErrInvalidSize),
		errors.Is(err, orgdomain.ErrSubdomainTooShort),
		errors.Is(err, orgdomain.ErrSubdomainReserved),
		errors.Is(err, orgdomain.ErrUnknownModule),
		errors.Is(err, orgdomain.ErrWrongSitePassword):
		return true
	case errors.Is(err, bookingdomain.ErrMissingFields),
		errors.Is(err, bookingdomain.ErrInvalidTime),
		errors.Is(err, bookingdomain.ErrEndBeforeStart),
		errors.Is(err, bookingdomain.ErrInvalidRange),
		errors.Is(err, bookingdomain.ErrInvalidResourceName):
		return true
	case errors.Is(err, contentdomain.ErrTitleRequired),
		errors.Is(err, contentdomain.ErrNameRequired),
		errors.Is(err, contentdomain.ErrInvalidSlug),
		errors.Is(err, contentdomain.ErrInvalidDate),
		errors.Is(err, contentdomain.ErrInvalidWebsite):
		return true
	case errors.Is(err, documentdomain.ErrMissingFields),
		errors.Is(err, documentdomain.ErrInvalidSize):
		return true
	case errors.Is(err, formdomain.ErrInvalidType),
		errors.Is(err, formdomain.ErrEmptySubmission),
		errors.Is(err, formdomain.ErrEmailRequired),
		errors.Is(err, formdomain.ErrNotAnApplication):
		return true
	case errors.Is(err, newsletterdomain.ErrSubjectRequired):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, authdomain.ErrUserExists),
		errors.Is(err, orgdomain.ErrSubdomainTaken),
		errors.Is(err, orgdomain.ErrAlreadyInvited),
		errors.Is(err, orgdomain.ErrCannotRemoveOwner),
		errors.Is(err, orgdomain.ErrStorageFull),
		errors.Is(err, bookingdomain.ErrSlotTaken),
		errors.Is(err, bookingdomain.ErrBusy),
		errors.Is(err, contentdomain.ErrSlugTaken),
		errors.Is(err, newsletterdomain.ErrAlreadySent):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, authdomain.ErrUserNotFound),
		errors.Is(err, orgdomain.ErrNotFound),
		errors.Is(err, orgdomain.ErrMemberNotFound),
		errors.Is(err, bookingdomain.ErrResourceNotFound),
		errors.Is(err, bookingdomain.ErrBookingNotFound),
		errors.Is(err, contentdomain.ErrNotFound),
		errors.Is(err, documentdomain.ErrNotFound),
		errors.Is(err, formdomain.ErrNotFound),
		errors.Is(err, newsletterdomain.ErrNotFound),
		errors.Is(err, repository.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	default:
		return err.Error()
	}
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	if strings.HasSuffix(code, "_required") {
		return strings.TrimSuffix(code, "_required")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	case "missing_fields", "document_missing_fields":
		return "required fields are missing"
	default:
		return "invalid value"
	}
}

var siteMessages = map[error]string{
	bookingdomain.ErrMissingFields:       "Fyll i alla fält.",
	bookingdomain.ErrInvalidTime:         "Ogiltigt datum eller klockslag.",
	bookingdomain.ErrEndBeforeStart:      "Sluttid måste vara efter starttid.",
	bookingdomain.ErrInvalidRange:        "Ogiltigt datumintervall.",
	bookingdomain.ErrSlotTaken:           "Tiden är redan bokad!",
	bookingdomain.ErrBusy:                "Många bokar just nu, försök igen om en stund.",
	formdomain.ErrInvalidType:            "Okänt formulär.",
	formdomain.ErrEmptySubmission:        "Formuläret är tomt.",
	formdomain.ErrEmailRequired:          "Ange din e-postadress.",
	orgdomain.ErrWrongSitePassword:       "Fel lösenord",
	orgdomain.ErrStorageFull:             "Lagringsutrymmet är fullt.",
	ErrInvalidRequest:                    "Ogiltig förfrågan.",
	pagination.ErrInvalidPageToken:       "Ogiltig sida.",
	contentdomain.ErrInvalidDate:         "Ogiltigt datum.",
	bookingdomain.ErrInvalidResourceName: "Ange ett namn.",
}

func siteMessage(err error) string {
	for target, msg := range siteMessages {
		if errors.Is(err, target) {
			return msg
		}
	}
	if isConflictError(err) {
		return "Det gick inte att spara, försök igen."
	}
	return "Kontrollera uppgifterna och försök igen."
}
