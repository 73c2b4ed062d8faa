package handler

import (
	"context"
	"testing"

	"github.com/BaSui01/hrflow/types"
)

type stubHandler struct {
	Base
}

func newStub(name string, caps ...string) *stubHandler {
	return &stubHandler{Base: NewBase(name, "stub", caps)}
}

func (s *stubHandler) Process(ctx context.Context, request string, reqCtx map[string]any) (*types.Response, error) {
	return &types.Response{Success: true, Message: "handled by " + s.Name()}, nil
}

func TestSubstringScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		request      string
		capabilities []string
		want         float64
	}{
		{"no capabilities", "anything", nil, 0},
		{"no match", "schedule an interview", []string{"benefits information"}, 0},
		{"one of two", "schedule an interview", []string{"interview scheduling", "interview"}, 0.5},
		{"case insensitive", "SCHEDULE AN INTERVIEW", []string{"interview"}, 1},
		{"all match", "interview and benefits", []string{"interview", "benefits"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SubstringScore(tt.request, tt.capabilities)
			if got != tt.want {
				t.Fatalf("SubstringScore(%q) = %v, want %v", tt.request, got, tt.want)
			}
		})
	}
}

func TestBase_CapabilitiesCopied(t *testing.T) {
	t.Parallel()

	caps := []string{"interview scheduling"}
	b := NewBase("recruitment", "", caps)
	caps[0] = "mutated"
	if b.Capabilities()[0] != "interview scheduling" {
		t.Fatalf("capabilities must be copied at construction")
	}
	got := b.Capabilities()
	got[0] = "mutated again"
	if b.Capabilities()[0] != "interview scheduling" {
		t.Fatalf("capabilities accessor must return a copy")
	}
}

func TestRegistry_OrderAndLookup(t *testing.T) {
	t.Parallel()

	reg, err := NewRegistry(
		newStub("recruitment", "interview scheduling"),
		newStub("employee_management", "benefits information"),
		newStub("onboarding", "new hire"),
	)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	names := reg.Names()
	want := []string{"employee_management", "onboarding", "recruitment"}
	for i, n := range want {
		if names[i] != n {
			t.Fatalf("names[%d] = %s, want %s", i, names[i], n)
		}
	}

	if _, ok := reg.Get("onboarding"); !ok {
		t.Fatalf("expected onboarding handler")
	}
	if _, ok := reg.Get("missing"); ok {
		t.Fatalf("did not expect missing handler")
	}
}

func TestRegistry_DuplicateName(t *testing.T) {
	t.Parallel()

	_, err := NewRegistry(newStub("recruitment"), newStub("recruitment"))
	if err == nil {
		t.Fatalf("expected duplicate name error")
	}
}
