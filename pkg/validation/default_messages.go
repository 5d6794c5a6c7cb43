package validation

import (
	"fmt"
	"strings"
)

func DefaultMessage(field, tag, param string) string {
	field = strings.ToLower(field)

	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "required_if":
		return fmt.Sprintf("%s is required when %s", field, param)
	case "numeric":
		return fmt.Sprintf("%s must be numeric", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "min":
		return fmt.Sprintf("%s must have at least %s item(s)", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "unique":
		return fmt.Sprintf("%s must not contain duplicates", field)
	case TagSQLIdentifier:
		return fmt.Sprintf("%s must be a plain SQL identifier", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
