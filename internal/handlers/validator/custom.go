package validator

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

const maxTitleLength = 500

var (
	// data api endpoint paths, e.g. "sales/by_region"
	endpointPathRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-]+(/[a-zA-Z0-9_\-.]+)*$`)
	clusterIDRegex    = regexp.MustCompile(`^[0-9a-zA-Z-]+$`)
)

func todoTitleValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}

	trimmed := strings.TrimSpace(val)
	return len(trimmed) > 0 && len(trimmed) <= maxTitleLength
}

func todoFilterValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	switch val {
	case "", "all", "active", "completed":
		return true
	default:
		return false
	}
}

func endpointPathValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}

	if strings.Contains(val, "..") {
		return false
	}
	return endpointPathRegex.MatchString(strings.Trim(val, "/"))
}

func clusterIDValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}

	// presence is checked by "required"
	if val == "" {
		return true
	}
	return clusterIDRegex.MatchString(val)
}
