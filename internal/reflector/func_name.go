package reflector

import (
	"reflect"
	"runtime"
	"strings"
)

// FuncName returns the bare name of fn as reported by the runtime, without
// package path or receiver. Method values lose their "-fm" suffix, so a
// method value and the method itself report the same name.
//
// Anonymous functions report as "funcN". Such names are stable within a
// build but not across refactors; callers that persist names should not
// rely on them.
//
// Returns "" if fn is not a non-nil func.
func FuncName(fn any) string {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return ""
	}
	rf := runtime.FuncForPC(v.Pointer())
	if rf == nil {
		return ""
	}
	name := strings.TrimSuffix(rf.Name(), "-fm")
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}
