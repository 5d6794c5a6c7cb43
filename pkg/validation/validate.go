package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// TagSQLIdentifier accepts names that are safe to embed (quoted) in generated SQL.
const TagSQLIdentifier = "sqlident"

var (
	identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

	once     sync.Once
	validate *validator.Validate
)

// IsSQLIdentifier reports whether s is a bare identifier (letters, digits, underscore).
func IsSQLIdentifier(s string) bool {
	return identPattern.MatchString(s)
}

// Validator returns the shared validator with the custom tags registered.
func Validator() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation(TagSQLIdentifier, func(fl validator.FieldLevel) bool {
			return IsSQLIdentifier(fl.Field().String())
		})
	})
	return validate
}

// Struct validates v and flattens the failures into one readable error.
func Struct(v any) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, DefaultMessage(fe.Field(), fe.Tag(), fe.Param()))
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}
