// SPDX-License-Identifier: MPL-2.0

package command

import (
	"fmt"
	"reflect"
)

// AnnotateHelp appends " (default = <value>)" to help when the action takes a
// value and the default is meaningful. It is a pure function of its inputs.
//
// Switch actions (store_true, store_false, store_const) and help never get an
// annotation. A default is meaningful unless IsEmptyDefault reports true, so
// 0 and false are annotated while nil, "" and empty collections are not.
func AnnotateHelp(action Action, def any, help string) string {
	switch action {
	case ActionHelp, ActionStoreTrue, ActionStoreFalse, ActionStoreConst:
		return help
	}
	if IsEmptyDefault(def) {
		return help
	}
	return help + " (default = " + FormatDefault(def) + ")"
}

// IsEmptyDefault reports whether def carries no displayable default: nil, the
// empty string, or an empty slice, array or map. Numbers and booleans are never
// empty, whatever their value.
func IsEmptyDefault(def any) bool {
	if def == nil {
		return true
	}
	v := reflect.ValueOf(def)
	switch v.Kind() {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
		return v.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}

// FormatDefault renders a default value for help text. Booleans render as
// True/False; collections render their elements space separated in brackets.
func FormatDefault(def any) string {
	switch v := def.(type) {
	case bool:
		if v {
			return "True"
		}
		return "False"
	default:
		return fmt.Sprintf("%v", def)
	}
}
