package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	msgValidation    = "Validation error"
	msgUnauthorized  = "Unauthorized"
	msgPoolNotFound  = "Pool not found."
	msgAlreadyJoined = "You already joined this pool."
	msgInternal      = "Internal server error"
)

var registerValidatorOnce sync.Once

// useJSONFieldNames makes validation errors report the json name of a
// field instead of the Go one.
func useJSONFieldNames() {
	registerValidatorOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "uri"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})
	})
}

func respondMessage(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{"message": message})
}

func respondValidation(ctx *gin.Context, issues map[string]string) {
	ctx.JSON(http.StatusBadRequest, gin.H{
		"message": msgValidation,
		"issues":  issues,
	})
}

func respondBindError(ctx *gin.Context, err error) {
	respondValidation(ctx, validationIssues(err))
}

func validationIssues(err error) map[string]string {
	issues := make(map[string]string)

	var (
		fieldErrs validator.ValidationErrors
		typeErr   *json.UnmarshalTypeError
		syntaxErr *json.SyntaxError
	)

	switch {
	case errors.As(err, &fieldErrs):
		for _, fe := range fieldErrs {
			issues[fe.Field()] = describeFieldError(fe)
		}
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		issues[field] = fmt.Sprintf("expected %s, received %s", typeErr.Type.Kind(), typeErr.Value)
	case errors.As(err, &syntaxErr):
		issues["body"] = "malformed JSON"
	case errors.Is(err, io.EOF):
		issues["body"] = "request body is required"
	default:
		issues["body"] = err.Error()
	}

	return issues
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "email":
		return "must be a valid email"
	case "url":
		return "must be a valid URL"
	case "uuid":
		return "must be a valid UUID"
	default:
		return "is invalid"
	}
}
