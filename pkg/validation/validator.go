package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/pennywise-app/gateguard/pkg/types"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json field names instead of Go struct field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// Outcome is the result of validating one payload. Exactly one of OK,
// Malformed, Internal or a non-empty Errors slice describes what happened;
// callers branch on it, never on panics or error values.
type Outcome struct {
	OK        bool
	Malformed bool
	Internal  bool
	Errors    []types.FieldError
}

func validOutcome() Outcome {
	return Outcome{OK: true}
}

func malformedOutcome() Outcome {
	return Outcome{
		Malformed: true,
		Errors:    []types.FieldError{{Field: "", Message: "Invalid JSON in request body"}},
	}
}

func internalOutcome() Outcome {
	return Outcome{
		Internal: true,
		Errors:   []types.FieldError{{Field: "", Message: "Internal validation error"}},
	}
}

// ValidateBody parses body into dst (a pointer to the declared schema
// struct) and validates it. Unparseable JSON is reported as Malformed; a
// well-formed document with wrong field types or constraint violations
// yields one FieldError per violated field. Panics from the validator are
// swallowed into an Internal outcome so nothing escapes the pipeline.
func ValidateBody(body []byte, dst interface{}) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = internalOutcome()
		}
	}()

	if err := json.Unmarshal(body, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			// The document parsed; one field has the wrong type. That is a
			// schema violation, not malformed JSON.
			return Outcome{Errors: []types.FieldError{{
				Field:   typeErr.Field,
				Message: fmt.Sprintf("must be of type %s", typeErr.Type.String()),
			}}}
		}
		return malformedOutcome()
	}

	return checkStruct(dst)
}

// ValidateQuery decodes flat query strings into dst in two phases: the raw
// strings are decoded per-field against the target's declared types
// (a non-numeric value bound to an int field becomes a field error, not a
// silent guess), then the result is validated like a body.
func ValidateQuery(values url.Values, dst interface{}) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = internalOutcome()
		}
	}()

	raw := make(map[string]interface{}, len(values))
	for key := range values {
		raw[key] = values.Get(key)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           dst,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return internalOutcome()
	}
	if err := decoder.Decode(raw); err != nil {
		var decodeErr *mapstructure.Error
		if errors.As(err, &decodeErr) {
			fieldErrors := make([]types.FieldError, 0, len(decodeErr.Errors))
			for _, msg := range decodeErr.Errors {
				field := decodeErrorField(msg)
				fieldErrors = append(fieldErrors, types.FieldError{
					Field:   field,
					Message: decodeMessageFor(field, dst),
				})
			}
			return Outcome{Errors: fieldErrors}
		}
		return internalOutcome()
	}

	return checkStruct(dst)
}

func checkStruct(dst interface{}) Outcome {
	err := validate.Struct(dst)
	if err == nil {
		return validOutcome()
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return internalOutcome()
	}

	fieldErrors := make([]types.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fieldErrors = append(fieldErrors, types.FieldError{
			Field:   fieldPath(fe),
			Message: messageFor(fe),
		})
	}
	return Outcome{Errors: fieldErrors}
}

// fieldPath strips the root struct name from the namespace, leaving the
// dotted path into the payload ("email", "address.city").
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, found := strings.Cut(ns, "."); found {
		return rest
	}
	return ns
}

func messageFor(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "uuid4":
		return fmt.Sprintf("%s must be a valid UUID", field)
	case "datetime":
		return fmt.Sprintf("%s must be a date in %s format", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lt":
		return fmt.Sprintf("%s must be less than %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

var quotedFieldRe = regexp.MustCompile(`'([^']+)'`)

func decodeErrorField(msg string) string {
	if m := quotedFieldRe.FindStringSubmatch(msg); m != nil {
		return m[1]
	}
	return ""
}

// decodeMessageFor builds the client-facing message for a failed per-field
// decode. The decoder's own error text names Go internals and never reaches
// the response body.
func decodeMessageFor(field string, dst interface{}) string {
	if field == "" {
		return "query parameter is invalid"
	}

	t := reflect.TypeOf(dst)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
			if name != field {
				continue
			}
			switch t.Field(i).Type.Kind() {
			case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
				reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
				return fmt.Sprintf("%s must be a valid integer", field)
			case reflect.Float32, reflect.Float64:
				return fmt.Sprintf("%s must be a valid number", field)
			case reflect.Bool:
				return fmt.Sprintf("%s must be a valid boolean", field)
			}
		}
	}
	return fmt.Sprintf("%s is invalid", field)
}
