package model

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
)

func TestErrorMessagesAndUnwrap(t *testing.T) {
	cause := errors.New("boom")

	perr := &ParseError{Path: "a.wasm", Offset: 12, Cause: cause}
	if !strings.Contains(perr.Error(), "a.wasm") || !strings.Contains(perr.Error(), "12") {
		t.Fatalf("parse error message: %q", perr.Error())
	}
	if !errors.Is(perr, cause) {
		t.Fatalf("parse error does not unwrap")
	}

	cerr := &ConfigError{Reason: "bad threshold"}
	if cerr.Error() != "config: bad threshold" {
		t.Fatalf("config error message: %q", cerr.Error())
	}

	ioerr := &IOError{Path: "lib.rs", Cause: fs.ErrNotExist}
	if !errors.Is(ioerr, fs.ErrNotExist) {
		t.Fatalf("io error does not unwrap")
	}
}

func TestSeverityOrdering(t *testing.T) {
	if !SeverityGTE(SeverityCritical, SeverityHigh) {
		t.Fatalf("critical should outrank high")
	}
	if SeverityGTE(SeverityLow, SeverityMedium) {
		t.Fatalf("low should not outrank medium")
	}
	if ParseSeverity("high") != SeverityHigh || ParseSeverity("nonsense") != SeverityLow {
		t.Fatalf("ParseSeverity mapping wrong")
	}
}
