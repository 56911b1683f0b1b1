package reflector

import (
	"strings"
	"testing"
)

func loadWidget() {}

type widgetSource struct{}

func (widgetSource) LoadWidget()    {}
func (*widgetSource) ReloadWidget() {}

func TestFuncName(t *testing.T) {
	if got := FuncName(loadWidget); got != "loadWidget" {
		t.Errorf("unexpected name for plain func: %q", got)
	}
}

func TestFuncName_MethodValue(t *testing.T) {
	var src widgetSource

	if got := FuncName(src.LoadWidget); got != "LoadWidget" {
		t.Errorf("unexpected name for value-receiver method: %q", got)
	}
	if got := FuncName((&src).ReloadWidget); got != "ReloadWidget" {
		t.Errorf("unexpected name for pointer-receiver method: %q", got)
	}
}

func TestFuncName_Anonymous(t *testing.T) {
	got := FuncName(func() {})
	if !strings.HasPrefix(got, "func") {
		t.Errorf("expected runtime-generated funcN name, got %q", got)
	}
}

func TestFuncName_NotAFunc(t *testing.T) {
	if got := FuncName(nil); got != "" {
		t.Errorf("expected empty name for nil, got %q", got)
	}
	if got := FuncName(42); got != "" {
		t.Errorf("expected empty name for non-func, got %q", got)
	}
	var fn func()
	if got := FuncName(fn); got != "" {
		t.Errorf("expected empty name for nil func value, got %q", got)
	}
}
