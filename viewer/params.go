package viewer

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

// ParamEditor sets named viewer parameters from user supplied strings. Failed edits leave the
// parameter unchanged.
type ParamEditor struct {
	params map[string]interface{}
}

// NewParamEditor returns an editor with nothing bound.
func NewParamEditor() *ParamEditor {
	return &ParamEditor{params: map[string]interface{}{}}
}

// Bind registers a parameter. ptr must be a *bool, *int, *float64 or *string; a nil ptr
// registers a parameter that is known but unset.
func (e *ParamEditor) Bind(name string, ptr interface{}) error {
	var unset bool
	switch p := ptr.(type) {
	case nil:
		unset = true
	case *bool:
		unset = p == nil
	case *int:
		unset = p == nil
	case *float64:
		unset = p == nil
	case *string:
		unset = p == nil
	default:
		return errors.Errorf("cannot bind parameter %q of type %T", name, ptr)
	}
	if unset {
		ptr = nil
	}
	e.params[name] = ptr
	return nil
}

// Names returns the bound parameter names, sorted.
func (e *ParamEditor) Names() []string {
	names := make([]string, 0, len(e.params))
	for name := range e.params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the current value of a parameter.
func (e *ParamEditor) Get(name string) (interface{}, error) {
	ptr, ok := e.params[name]
	if !ok {
		return nil, errors.Errorf("the %q parameter does not exist", name)
	}
	switch p := ptr.(type) {
	case *bool:
		return *p, nil
	case *int:
		return *p, nil
	case *float64:
		return *p, nil
	case *string:
		return *p, nil
	default:
		return nil, errors.Errorf("the %q parameter is unset", name)
	}
}

// Set parses value as the parameter's type and assigns it. Booleans accept "true" and "false"
// in any case.
func (e *ParamEditor) Set(name, value string) error {
	ptr, ok := e.params[name]
	if !ok {
		return errors.Errorf("the %q parameter does not exist", name)
	}
	switch p := ptr.(type) {
	case *bool:
		switch v := strings.TrimSpace(value); {
		case strings.EqualFold(v, "true"):
			*p = true
		case strings.EqualFold(v, "false"):
			*p = false
		default:
			return errors.Errorf("cannot cast %q to bool, expected true or false", value)
		}
	case *int:
		v, err := cast.ToIntE(strings.TrimSpace(value))
		if err != nil {
			return errors.Wrapf(err, "cannot cast %q to int", value)
		}
		*p = v
	case *float64:
		v, err := cast.ToFloat64E(strings.TrimSpace(value))
		if err != nil {
			return errors.Wrapf(err, "cannot cast %q to float64", value)
		}
		*p = v
	case *string:
		*p = value
	default:
		return errors.Errorf("the %q parameter is unset, so its type is unknown", name)
	}
	return nil
}
