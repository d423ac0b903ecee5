package service

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

const (
	TitleLengthMessage   = "Title must be between 3 and 200 characters."
	ContentLengthMessage = "Content must be between 10 and 1000 characters."
	NullRequestMessage   = "Request body cannot be null."
)

// fieldMessages holds the one message reported per field, whichever of its
// rules failed.
var fieldMessages = map[string]string{
	"Title":   TitleLengthMessage,
	"Content": ContentLengthMessage,
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// validateRequest checks every field and returns all violations at once.
// An empty map means the request is valid.
func validateRequest(req any) map[string][]string {
	fieldErrors := map[string][]string{}
	err := validate.Struct(req)
	if err == nil {
		return fieldErrors
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fieldErrors["Request"] = []string{err.Error()}
		return fieldErrors
	}
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Field()]
		if !ok {
			msg = fe.Error()
		}
		if len(fieldErrors[fe.Field()]) == 0 {
			fieldErrors[fe.Field()] = append(fieldErrors[fe.Field()], msg)
		}
	}
	return fieldErrors
}

func nullRequest() ValidationError {
	return ValidationError{Errors: map[string][]string{"Request": {NullRequestMessage}}}
}
