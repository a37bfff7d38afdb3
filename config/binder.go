package config

import (
	"fmt"
	"reflect"

	"dario.cat/mergo"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

// Binder decodes map[string]any data into Go structs, fills unset fields
// from defaults and validates the result.
//
// Binding runs in three stages:
//  1. Decode: untyped maps become typed structs using mapstructure
//  2. Defaults: zero-valued fields are filled from a defaults value (optional)
//  3. Validate: struct field values are checked against `validate` tags
//
// Struct fields use `config` tags for key mapping. Keys that have no matching
// field are ignored, so a Binder can pick a typed view out of a larger
// configuration tree.
//
// Example struct:
//
//	type Output struct {
//	    Path     string `config:"path" validate:"required"`
//	    Filename string `config:"filename"`
//	}
type Binder struct {
	validator *validator.Validate
}

// BindError represents an error that occurred during one of the bind stages.
//
// Stage is "decode" for type errors in the source data, "defaults" when the
// defaults could not be applied and "validate" for values that violate the
// validation rules.
type BindError struct {
	// Stage indicates which phase failed: "decode", "defaults" or "validate"
	Stage string

	// Err is the underlying error from mapstructure, mergo or validator
	Err error
}

// Error implements the error interface.
func (e *BindError) Error() string {
	return fmt.Sprintf("config %s error: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error, enabling errors.Is and errors.As.
func (e *BindError) Unwrap() error {
	return e.Err
}

// NewBinder creates a new Binder with default decode hooks and validators.
//
// The decoder converts "5s" style strings to time.Duration, splits
// comma-separated strings into slices and applies weak type conversion
// (string "123" -> int 123).
func NewBinder() *Binder {
	return &Binder{
		validator: validator.New(),
	}
}

// Bind decodes the source map into the target struct and validates it.
//
// The target parameter must be a pointer to a struct. If either stage fails,
// a BindError is returned with the stage and underlying error. The target
// may be partially populated when validation fails.
func (b *Binder) Bind(source map[string]any, target any) error {
	return b.BindWithDefaults(source, target, nil)
}

// BindWithDefaults is Bind with a defaults stage between decoding and
// validation. defaults must be a value or pointer of the target's struct
// type; every field left at its zero value by the source is copied from it.
// A nil defaults skips the stage.
func (b *Binder) BindWithDefaults(source map[string]any, target, defaults any) error {
	if err := b.decode(source, target); err != nil {
		return &BindError{
			Stage: "decode",
			Err:   err,
		}
	}

	if defaults != nil {
		if err := applyDefaults(target, defaults); err != nil {
			return &BindError{
				Stage: "defaults",
				Err:   err,
			}
		}
	}

	if err := b.validate(target); err != nil {
		return &BindError{
			Stage: "validate",
			Err:   err,
		}
	}

	return nil
}

func (b *Binder) decode(source map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		TagName: "config",
	})
	if err != nil {
		return err
	}

	return decoder.Decode(source)
}

func applyDefaults(target, defaults any) error {
	src := reflect.Indirect(reflect.ValueOf(defaults)).Interface()
	return mergo.Merge(target, src)
}

func (b *Binder) validate(target any) error {
	return b.validator.Struct(target)
}
