package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestWithBuyerID_BuyerIDFromCtx(t *testing.T) {
	buyerID := uuid.New()
	ctx := WithBuyerID(context.Background(), buyerID)

	got, err := BuyerIDFromCtx(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != buyerID {
		t.Fatalf("expected %v, got %v", buyerID, got)
	}
}

func TestBuyerIDFromCtx_EmptyContext(t *testing.T) {
	_, err := BuyerIDFromCtx(context.Background())
	if !errors.Is(err, ErrBuyerIDNotFound) {
		t.Fatalf("expected ErrBuyerIDNotFound, got %v", err)
	}
}

func TestBuyerIDFromCtx_NilUUID(t *testing.T) {
	ctx := WithBuyerID(context.Background(), uuid.Nil)
	_, err := BuyerIDFromCtx(ctx)
	if !errors.Is(err, ErrBuyerIDNotFound) {
		t.Fatalf("expected ErrBuyerIDNotFound for uuid.Nil, got %v", err)
	}
}

func TestBuyerIDFromCtx_Isolation(t *testing.T) {
	buyer1 := uuid.New()
	buyer2 := uuid.New()

	got1, _ := BuyerIDFromCtx(WithBuyerID(context.Background(), buyer1))
	got2, _ := BuyerIDFromCtx(WithBuyerID(context.Background(), buyer2))

	if got1 != buyer1 {
		t.Fatalf("ctx1: expected %v, got %v", buyer1, got1)
	}
	if got2 != buyer2 {
		t.Fatalf("ctx2: expected %v, got %v", buyer2, got2)
	}
}
