package errors

import (
	"fmt"
	"testing"
)

func TestAusecError(t *testing.T) {
	// Test basic error creation
	err := New(ErrCodeNoMatch, "nothing matched")
	if err.Code != ErrCodeNoMatch {
		t.Errorf("expected code %s, got %s", ErrCodeNoMatch, err.Code)
	}

	// Test error wrapping
	cause := fmt.Errorf("underlying error")
	wrapped := Wrap(cause, ErrCodeDownload, "download failed")

	if wrapped.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}

	if !Is(wrapped, ErrCodeDownload) {
		t.Error("Is should return true for matching code")
	}

	if Is(wrapped, ErrCodeNoMatch) {
		t.Error("Is should return false for non-matching code")
	}

	detailed := err.WithDetail("dir", "/E1").WithDetail("count", 3)
	if detailed.Details["dir"] != "/E1" {
		t.Error("WithDetail should add details")
	}
}

func TestIsThroughWrapping(t *testing.T) {
	inner := Connection("ftp.example:21", fmt.Errorf("refused"))
	outer := Download("/E1/Standard/Light/a.zip", inner)
	fmtWrapped := fmt.Errorf("fetch: %w", outer)

	if !Is(fmtWrapped, ErrCodeDownload) {
		t.Error("Is should find the outer code through fmt wrapping")
	}
	if !Is(fmtWrapped, ErrCodeConnection) {
		t.Error("Is should find the inner code through the cause chain")
	}
	if got := GetCode(fmtWrapped); got != ErrCodeDownload {
		t.Errorf("GetCode = %s, want %s", got, ErrCodeDownload)
	}
	if Is(nil, ErrCodeDownload) || GetCode(nil) != "" {
		t.Error("nil errors carry no code")
	}
	if GetCode(fmt.Errorf("plain")) != "" {
		t.Error("plain errors carry no code")
	}
}

func TestErrorConstructors(t *testing.T) {
	err := AmbiguousElection([]string{"E2", "E1"})
	if err.Code != ErrCodeAmbiguousElection {
		t.Errorf("expected code %s, got %s", ErrCodeAmbiguousElection, err.Code)
	}
	candidates, ok := err.Details["candidates"].([]string)
	if !ok || len(candidates) != 2 || candidates[0] != "E1" {
		t.Errorf("AmbiguousElection should include sorted candidates, got %v", err.Details["candidates"])
	}

	err = DepthExceeded("/a/b/c", 2)
	if err.Code != ErrCodeConnection {
		t.Errorf("DepthExceeded should be connection-class, got %s", err.Code)
	}
	if err.Details["max_depth"] != 2 {
		t.Error("DepthExceeded should include max_depth detail")
	}

	err = MemberNotFound("/tmp/a.zip", "xml/x.xml")
	if err.Details["member"] != "xml/x.xml" {
		t.Error("MemberNotFound should include member detail")
	}
}
