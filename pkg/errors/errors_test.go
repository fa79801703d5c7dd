package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	t.Parallel()

	meta := MetadataFor(CodeInsufficientStock)
	if meta.HTTPStatus != http.StatusConflict {
		t.Fatalf("unexpected status %d", meta.HTTPStatus)
	}
	if !meta.Retryable {
		t.Fatal("insufficient stock should be retryable by the caller")
	}

	meta = MetadataFor(CodeInvalidSignature)
	if meta.DetailsAllowed {
		t.Fatal("signature failures must stay opaque")
	}
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	t.Parallel()

	meta := MetadataFor(Code("BOGUS"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal fallback, got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	t.Parallel()

	cause := stdErrors.New("boom")
	err := Wrap(CodeDependency, cause, "load order")
	if !stdErrors.Is(err, cause) {
		t.Fatal("wrapped cause not found in chain")
	}
	if As(err).Code() != CodeDependency {
		t.Fatalf("unexpected code %s", As(err).Code())
	}
}

func TestAsThroughFmtWrap(t *testing.T) {
	t.Parallel()

	inner := New(CodeEmptyCart, "cart has no lines")
	outer := fmt.Errorf("checkout: %w", inner)
	typed := As(outer)
	if typed == nil || typed.Code() != CodeEmptyCart {
		t.Fatalf("expected EMPTY_CART through wrap, got %v", typed)
	}
	if !IsCode(outer, CodeEmptyCart) {
		t.Fatal("IsCode should see the wrapped code")
	}
}

func TestDumpCollectsChain(t *testing.T) {
	t.Parallel()

	err := Wrap(CodeDependency, stdErrors.New("dial tcp: refused"), "query variants")
	dump := Dump(err)
	if dump.Code != CodeDependency {
		t.Fatalf("unexpected code %s", dump.Code)
	}
	if len(dump.Chain) != 2 {
		t.Fatalf("expected 2 chain entries, got %d", len(dump.Chain))
	}
}
