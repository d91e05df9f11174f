package tool

import (
	"context"
	"errors"
	"testing"
)

type rectArgs struct {
	XMM float64 `json:"x_mm,omitempty"`
	YMM float64 `json:"y_mm,omitempty"`
}

type rectResult struct {
	Area float64 `json:"area"`
}

func newRectTool(t *testing.T, name string) Tool {
	t.Helper()
	rect, err := NewFunction(name, "test rectangle", func(ctx context.Context, args rectArgs) (rectResult, error) {
		return rectResult{Area: args.XMM * args.YMM}, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return rect
}

func TestRegistry_Lookup(t *testing.T) {
	reg, err := NewRegistry([]Tool{newRectTool(t, "rect"), newRectTool(t, "other")})
	if err != nil {
		t.Fatal(err)
	}
	tl, err := reg.Lookup("rect")
	if err != nil {
		t.Fatal(err)
	}
	if tl.Name() != "rect" {
		t.Fatalf("expected rect, got %q", tl.Name())
	}
}

func TestRegistry_UnknownTool(t *testing.T) {
	reg, err := NewRegistry([]Tool{newRectTool(t, "rect"), newRectTool(t, "other")})
	if err != nil {
		t.Fatal(err)
	}
	_, lookupErr := reg.Lookup("Rect") // case-sensitive
	var unknown *UnknownToolError
	if !errors.As(lookupErr, &unknown) {
		t.Fatalf("expected UnknownToolError, got %v", lookupErr)
	}
	if unknown.Name != "Rect" {
		t.Fatalf("expected requested name, got %q", unknown.Name)
	}
	if len(unknown.Available) != 2 || unknown.Available[0] != "other" || unknown.Available[1] != "rect" {
		t.Fatalf("expected sorted available names, got %v", unknown.Available)
	}
}

func TestRegistry_DuplicateName(t *testing.T) {
	_, err := NewRegistry([]Tool{newRectTool(t, "rect"), newRectTool(t, "rect")})
	if err == nil {
		t.Fatal("expected duplicate name error")
	}
}

func TestFunction_Run(t *testing.T) {
	rect := newRectTool(t, "rect")
	out, err := rect.Run(context.Background(), map[string]any{"x_mm": 4.0, "y_mm": 2.5})
	if err != nil {
		t.Fatal(err)
	}
	if out["area"] != 10.0 {
		t.Fatalf("expected area 10, got %v", out["area"])
	}
}

func TestFunction_BadArgs(t *testing.T) {
	rect := newRectTool(t, "rect")
	_, err := rect.Run(context.Background(), map[string]any{"x_mm": "wide"})
	if err == nil {
		t.Fatal("expected decode error")
	}
}

func TestFunction_Declaration(t *testing.T) {
	decl := newRectTool(t, "rect").Declaration()
	if decl.Name != "rect" {
		t.Fatalf("expected rect, got %q", decl.Name)
	}
	if decl.Parameters == nil {
		t.Fatal("expected derived parameter schema")
	}
}
