package service

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"tenant-service/internal/model"
)

var (
	roleNamePattern  = regexp.MustCompile(`^[a-zA-Z0-9_\s-]+$`)
	subdomainPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_]{0,48}$`)
)

const msgPassword = "Password must be at least 8 characters and contain a number"

// validate checks the `validate` tags on the request DTOs. Custom tags:
//
//	notblank   non-empty after trimming
//	emailaddr  a valid address once trimmed and lower-cased
//	rolename   letters, digits, spaces, underscores and hyphens
//	subdomain  1-49 of [a-z0-9_], not starting with an underscore
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	mustRegister(v, "notblank", validators.NotBlank)
	mustRegister(v, "emailaddr", func(fl validator.FieldLevel) bool {
		return v.Var(NormalizeEmail(fl.Field().String()), "required,email") == nil
	})
	mustRegister(v, "rolename", func(fl validator.FieldLevel) bool {
		return roleNamePattern.MatchString(strings.TrimSpace(fl.Field().String()))
	})
	mustRegister(v, "subdomain", func(fl validator.FieldLevel) bool {
		return subdomainPattern.MatchString(fl.Field().String())
	})

	v.RegisterStructValidation(atLeastOneField,
		model.UpdateRoleDTO{}, model.UpdateUserDTO{}, model.UpdateSystemAdminDTO{}, model.UpdateTenantDTO{})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// atLeastOneField rejects a sparse update that sets nothing
func atLeastOneField(sl validator.StructLevel) {
	current := sl.Current()
	for i := 0; i < current.NumField(); i++ {
		if f := current.Field(i); f.Kind() == reflect.Pointer && !f.IsNil() {
			return
		}
	}
	sl.ReportError(current.Interface(), "", "", "atleastone", "")
}

// NormalizeEmail lower-cases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validateStruct runs the tag rules and reports the first violation as a
// client-facing message
func validateStruct(dto any) error {
	err := validate.Struct(dto)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return errors.New(describe(fieldErrs[0]))
	}
	return err
}

func describe(fe validator.FieldError) string {
	field := label(fe.Field())
	switch fe.Tag() {
	case "atleastone":
		return "At least one field must be provided"
	case "required", "notblank":
		return field + " is required"
	case "emailaddr":
		return "Invalid email format"
	case "containsany":
		return msgPassword
	case "rolename":
		return "Role name may only contain letters, numbers, spaces, underscores and hyphens"
	case "subdomain":
		return "Subdomain must be 1-49 lower-case letters, digits or underscores"
	case "max":
		return fmt.Sprintf("%s must not exceed %s characters", field, fe.Param())
	case "min":
		if fe.Field() == "password" {
			return msgPassword
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
	}
	return "Invalid " + strings.ToLower(field)
}

// label turns a json field name into a message subject: first_name -> First name
func label(field string) string {
	field = strings.ReplaceAll(field, "_", " ")
	if field == "" {
		return "Field"
	}
	return strings.ToUpper(field[:1]) + field[1:]
}

func validateID(id uint) error {
	if validate.Var(id, "min=1") != nil {
		return errors.New("Invalid id")
	}
	return nil
}

func validateEmail(email string) error {
	if validate.Var(email, "emailaddr") != nil {
		return errors.New("Invalid email format")
	}
	return nil
}

func validateLogin(dto model.LoginDTO) error {
	if validate.Struct(dto) != nil {
		return errors.New("Email and password are required")
	}
	return nil
}

func validateCreateRole(dto model.CreateRoleDTO) error { return validateStruct(dto) }

func validateUpdateRole(dto model.UpdateRoleDTO) error { return validateStruct(dto) }

func validateCreateUser(dto model.CreateUserDTO) error { return validateStruct(dto) }

func validateUpdateUser(dto model.UpdateUserDTO) error { return validateStruct(dto) }

func validateCreateSystemAdmin(dto model.CreateSystemAdminDTO) error { return validateStruct(dto) }

func validateUpdateSystemAdmin(dto model.UpdateSystemAdminDTO) error { return validateStruct(dto) }

func validateCreateTenant(dto model.CreateTenantDTO) error { return validateStruct(dto) }

func validateUpdateTenant(dto model.UpdateTenantDTO) error { return validateStruct(dto) }
