package services

import (
	"errors"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	inner := errors.New("boom")
	err := Wrap(ErrExternalService, "extraction", "find match", "request failed", inner)
	if !errors.Is(err, ErrExternalService) {
		t.Fatalf("marker not preserved: %v", err)
	}
	if !errors.Is(err, inner) {
		t.Fatalf("inner error not preserved: %v", err)
	}
	want := "external service error: extraction: find match: request failed: boom"
	if err.Error() != want {
		t.Fatalf("message = %q, want %q", err.Error(), want)
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := Wrap(nil, "", "", "", nil)
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("nil marker not defaulted: %v", err)
	}
	if err.Error() != "transient failure: service failure" {
		t.Fatalf("message = %q", err.Error())
	}
}
