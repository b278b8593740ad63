package validator

import "github.com/go-playground/validator/v10"

func registerFn(tag string, fn func(fl validator.FieldLevel) bool) func(v *validator.Validate) {
	return func(v *validator.Validate) {
		_ = v.RegisterValidation(tag, fn)
	}
}

func NewTodoValidationRules() []ValidationRule {
	return []ValidationRule{
		{
			Rule: registerFn("todo_title", todoTitleValidator),
		},
		{
			Rule: registerFn("todo_filter", todoFilterValidator),
		},
	}
}

func NewQueryValidationRules() []ValidationRule {
	return []ValidationRule{
		{
			Rule: registerFn("cluster_id", clusterIDValidator),
		},
		{
			Rule: registerFn("endpoint_path", endpointPathValidator),
		},
	}
}
