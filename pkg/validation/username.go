package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var usernameRegex = regexp.MustCompile(`^[\w.@+-]{1,150}$`)

// NormalizeUsername trims the value and checks it against the allowed
// username alphabet: letters, digits and @.+-_ up to 150 characters.
func NormalizeUsername(value string) (string, error) {
	normalized := strings.TrimSpace(value)
	if !usernameRegex.MatchString(normalized) {
		return "", fmt.Errorf("invalid username. Use up to 150 letters, digits and @/./+/-/_ characters")
	}
	return normalized, nil
}

var registerOnce sync.Once

// RegisterValidators installs the custom binding rules on gin's validator.
// Safe to call more than once.
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		err = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			_, normErr := NormalizeUsername(fl.Field().String())
			return normErr == nil
		})
	})
	return err
}

// FieldErrors flattens validator errors into a field to rule map for clients.
func FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name := strings.ToLower(fe.Field())
		if fe.Param() != "" {
			fields[name] = fe.Tag() + "=" + fe.Param()
		} else {
			fields[name] = fe.Tag()
		}
	}
	return fields
}
