package handlers

import (
	"errors"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/postpilot/postpilot-api/internal/apperrors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}

func GetUserID(c *fiber.Ctx) string {
	userID, _ := c.Locals("user_id").(string)
	return userID
}

// fail writes the error envelope. Every failure is reported as 400 with the error message.
func fail(c *fiber.Ctx, err error) error {
	slog.Info(err.Error(), "path", c.Path())
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.Validation("body", "Invalid request body")
	}
	return validateStruct(out)
}

func validateStruct(out any) error {
	err := validate.Struct(out)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperrors.Validation("body", err.Error())
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required", "required_without":
		return apperrors.Required(fe.Field())
	case "uuid":
		return apperrors.Validation(fe.Field(), fe.Field()+" must be a valid id")
	case "url":
		return apperrors.Validation(fe.Field(), fe.Field()+" must be a valid URL")
	default:
		return apperrors.Validation(fe.Field(), fe.Field()+" is invalid")
	}
}

func paramID(c *fiber.Ctx) (string, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return "", apperrors.Validation("id", "id must be a valid id")
	}
	return id.String(), nil
}

// ErrorHandler reports errors that escape a handler, such as unknown routes, with the same envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusBadRequest
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code == fiber.StatusNotFound {
		code = fe.Code
	}
	slog.Error(err.Error(), "path", c.Path())
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
