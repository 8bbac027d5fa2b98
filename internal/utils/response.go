package utils

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// AppError is an error that already knows its HTTP status and the envelope
// message to report. Errors carries per-field validation details.
type AppError struct {
	Status  int
	Message string
	Errors  map[string][]string
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(status int, message string) *AppError {
	return &AppError{Status: status, Message: message}
}

// NewValidationError builds the 422 error used for every field-level failure,
// including duplicate emails surfaced by the store.
func NewValidationError(fields map[string][]string) *AppError {
	return &AppError{
		Status:  http.StatusUnprocessableEntity,
		Message: "The given data was invalid.",
		Errors:  fields,
	}
}

// Success writes the uniform success envelope. The message is omitted when
// empty (the info endpoint has none).
func Success(c *gin.Context, message string, payload gin.H) {
	body := gin.H{"status": "success"}
	if message != "" {
		body["message"] = message
	}
	for key, value := range payload {
		body[key] = value
	}
	c.JSON(http.StatusOK, body)
}

// RespondError writes the error envelope. Unknown errors are reported as a
// generic 500 so internals never leak to callers.
func RespondError(c *gin.Context, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Internal server error",
		})
		return
	}

	body := gin.H{
		"status":  "error",
		"message": appErr.Message,
	}
	if appErr.Errors != nil {
		body["errors"] = appErr.Errors
	}
	c.JSON(appErr.Status, body)
}

// RespondBindingError turns a gin binding failure into the 422 envelope with
// a per-field error list.
func RespondBindingError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		RespondError(c, &AppError{
			Status:  http.StatusUnprocessableEntity,
			Message: "The given data was invalid.",
			Errors:  map[string][]string{"body": {"The request body is malformed."}},
		})
		return
	}

	fields := map[string][]string{}
	for _, fe := range verrs {
		field := fe.Field()
		fields[field] = append(fields[field], fieldMessage(field, fe))
	}
	RespondError(c, NewValidationError(fields))
}

func fieldMessage(field string, fe validator.FieldError) string {
	label := strings.ReplaceAll(field, "_", " ")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", label)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", label)
	case "min":
		return fmt.Sprintf("The %s must be at least %s characters.", label, fe.Param())
	case "eqfield":
		return fmt.Sprintf("The %s confirmation does not match.", strings.TrimSuffix(label, " confirmation"))
	default:
		return fmt.Sprintf("The %s is invalid.", label)
	}
}
