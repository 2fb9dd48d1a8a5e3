// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package http

import (
	"encoding/json"
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/LerianStudio/warehouse-pool/pkg"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en2 "github.com/go-playground/validator/v10/translations/en"
	"github.com/gofiber/fiber/v2"
)

// DecodeHandlerFunc is a handler which works with withBody decorator.
// It receives a struct which was decoded by withBody decorator before.
// Ex: json -> withBody -> DecodeHandlerFunc.
type DecodeHandlerFunc func(p any, c *fiber.Ctx) error

// decoderHandler decodes payload coming from requests.
type decoderHandler struct {
	handler      DecodeHandlerFunc
	structSource any
	allowEmpty   bool
}

func newOfType(s any) any {
	t := reflect.TypeOf(s)
	v := reflect.New(t.Elem())

	return v.Interface()
}

// WithBody decodes and validates the request body into a new value of the type of s
// before calling h. An empty body is rejected.
func WithBody(s any, h DecodeHandlerFunc) fiber.Handler {
	d := &decoderHandler{
		handler:      h,
		structSource: s,
	}

	return d.FiberHandlerFunc
}

// WithOptionalBody behaves like WithBody but treats an empty body as "{}".
func WithOptionalBody(s any, h DecodeHandlerFunc) fiber.Handler {
	d := &decoderHandler{
		handler:      h,
		structSource: s,
		allowEmpty:   true,
	}

	return d.FiberHandlerFunc
}

// FiberHandlerFunc decodes the body, rejects unknown fields, validates the struct and
// finally calls the wrapped handler.
func (d *decoderHandler) FiberHandlerFunc(c *fiber.Ctx) error {
	s := newOfType(d.structSource)

	bodyBytes := c.Body()

	trimmedBody := strings.TrimSpace(string(bodyBytes))
	if len(trimmedBody) == 0 || trimmedBody == "null" {
		if !d.allowEmpty {
			return BadRequest(c, pkg.ValidateBadRequestFieldsError(pkg.FieldValidations{"body": "body is a required field"}, nil, "", nil))
		}

		bodyBytes = []byte("{}")
	}

	if err := json.Unmarshal(bodyBytes, s); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			field := typeErr.Field
			if field == "" {
				field = extractFieldNameFromUnmarshalError(err.Error())
			}

			return BadRequest(c, pkg.ValidateBadRequestFieldsError(nil, pkg.FieldValidations{field: "Invalid type for this field"}, "", nil))
		}

		return BadRequest(c, pkg.ValidateBadRequestFieldsError(nil, pkg.FieldValidations{"body": "malformed JSON"}, "", nil))
	}

	marshaled, err := json.Marshal(s)
	if err != nil {
		return err
	}

	var originalMap, marshaledMap map[string]any

	if err := json.Unmarshal(bodyBytes, &originalMap); err != nil {
		return BadRequest(c, pkg.ValidateBadRequestFieldsError(nil, pkg.FieldValidations{"body": "must be a JSON object"}, "", nil))
	}

	if err := json.Unmarshal(marshaled, &marshaledMap); err != nil {
		return err
	}

	if diffFields := findUnknownFields(originalMap, marshaledMap); len(diffFields) > 0 {
		return BadRequest(c, pkg.ValidateBadRequestFieldsError(nil, nil, "", diffFields))
	}

	if err := ValidateStruct(s); err != nil {
		return BadRequest(c, err)
	}

	return d.handler(s, c)
}

// findUnknownFields finds keys present in the original body but absent from the decoded struct.
func findUnknownFields(original, marshaled map[string]any) map[string]any {
	diffFields := make(map[string]any)

	for key, value := range original {
		marshaledValue, ok := marshaled[key]
		if !ok {
			diffFields[key] = value
			continue
		}

		originalValue, isMap := value.(map[string]any)
		if !isMap {
			continue
		}

		if marshaledMap, ok := marshaledValue.(map[string]any); ok {
			if nestedDiff := findUnknownFields(originalValue, marshaledMap); len(nestedDiff) > 0 {
				diffFields[key] = nestedDiff
			}
		}
	}

	return diffFields
}

// ValidateStruct validates a struct against its validate tags.
func ValidateStruct(s any) error {
	v, trans := newValidator()

	k := reflect.ValueOf(s).Kind()
	if k == reflect.Ptr {
		k = reflect.ValueOf(s).Elem().Kind()
	}

	if k != reflect.Struct {
		return nil
	}

	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	errPtr := malformedRequestErr(validationErrors, trans)

	return &errPtr
}

func fields(errs validator.ValidationErrors, trans ut.Translator) pkg.FieldValidations {
	if len(errs) == 0 {
		return nil
	}

	result := make(pkg.FieldValidations, len(errs))
	for _, e := range errs {
		result[e.Field()] = e.Translate(trans)
	}

	return result
}

func fieldsRequired(myMap pkg.FieldValidations) pkg.FieldValidations {
	result := make(pkg.FieldValidations)

	for key, value := range myMap {
		if strings.Contains(value, "required") {
			result[key] = value
		}
	}

	return result
}

func malformedRequestErr(err validator.ValidationErrors, trans ut.Translator) pkg.ValidationKnownFieldsError {
	invalidFieldsMap := fields(err, trans)

	requiredFields := fieldsRequired(invalidFieldsMap)

	var vErr pkg.ValidationKnownFieldsError

	_ = errors.As(pkg.ValidateBadRequestFieldsError(requiredFields, invalidFieldsMap, "", nil), &vErr)

	return vErr
}

//nolint:ireturn
func newValidator() (*validator.Validate, ut.Translator) {
	locale := en.New()
	uni := ut.New(locale, locale)

	trans, _ := uni.GetTranslator("en")

	v := validator.New()

	if err := en2.RegisterDefaultTranslations(v, trans); err != nil {
		panic(err)
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	_ = v.RegisterTranslation("required", trans, func(ut ut.Translator) error {
		return ut.Add("required", "{0} is a required field", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("required", formatErrorFieldName(fe.Namespace()))

		return t
	})

	_ = v.RegisterTranslation("gte", trans, func(ut ut.Translator) error {
		return ut.Add("gte", "{0} must be {1} or greater", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("gte", formatErrorFieldName(fe.Namespace()), fe.Param())

		return t
	})

	_ = v.RegisterTranslation("lte", trans, func(ut ut.Translator) error {
		return ut.Add("lte", "{0} must be {1} or less", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("lte", formatErrorFieldName(fe.Namespace()), fe.Param())

		return t
	})

	return v, trans
}

// formatErrorFieldName drops the struct name from a validator namespace.
func formatErrorFieldName(text string) string {
	re := regexp.MustCompile(`\.(.+)$`)

	matches := re.FindStringSubmatch(text)
	if len(matches) > 1 {
		return matches[1]
	}

	return text
}

// extractFieldNameFromUnmarshalError extracts the field name from a JSON unmarshal error.
func extractFieldNameFromUnmarshalError(errorMsg string) string {
	re := regexp.MustCompile(`struct field \w+\.(\w+)`)

	matches := re.FindStringSubmatch(errorMsg)
	if len(matches) > 1 {
		return matches[1]
	}

	return ""
}
