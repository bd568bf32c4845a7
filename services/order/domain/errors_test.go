package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestSentinelErrors_WrappedIdentity(t *testing.T) {
	for _, sentinel := range []error{ErrOrderNotFound, ErrProductNotFound, ErrInvalidArgument, ErrInsufficientStock} {
		wrapped := fmt.Errorf("context: %w", sentinel)
		if !errors.Is(wrapped, sentinel) {
			t.Fatalf("errors.Is must match wrapped %v", sentinel)
		}
	}
}

func TestSentinelErrors_Distinct(t *testing.T) {
	if errors.Is(ErrOrderNotFound, ErrProductNotFound) {
		t.Fatal("ErrOrderNotFound must not match ErrProductNotFound")
	}
}

func TestInsufficientStockError(t *testing.T) {
	pid := uuid.New()
	var err error = fmt.Errorf("reserve: %w", &InsufficientStockError{ProductID: pid, Available: 6, Requested: 7})

	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatal("expected errors.Is(err, ErrInsufficientStock)")
	}
	if errors.Is(err, ErrInvalidArgument) {
		t.Fatal("must not match ErrInvalidArgument")
	}

	var ise *InsufficientStockError
	if !errors.As(err, &ise) {
		t.Fatal("expected errors.As to find *InsufficientStockError")
	}
	if ise.ProductID != pid || ise.Available != 6 || ise.Requested != 7 {
		t.Fatalf("unexpected fields: %+v", ise)
	}
	if !strings.Contains(err.Error(), "available 6, requested 7") {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}
