package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/ordermgmt/services/catalog/domain/models"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		in      models.Name
		wantErr bool
	}{
		{"plain", "Acme Tools", false},
		{"unicode", "Поставщик", false},
		{"leading space", " Acme", true},
		{"trailing space", "Acme ", true},
		{"only whitespace", "   ", true},
		{"control character", "Ac\x00me", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateName(tt.in); (err != nil) != tt.wantErr {
				t.Fatalf("ValidateName(%q) = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePrice(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"0", false},
		{"0.5", false},
		{"19.99", false},
		{"99999999.99", false},
		{"-1", true},
		{"1.005", true},
		{"100000000", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if err := ValidatePrice(decimal.RequireFromString(tt.in)); (err != nil) != tt.wantErr {
				t.Fatalf("ValidatePrice(%s) = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
		})
	}
}

func TestValidateProduct(t *testing.T) {
	valid := models.NewProduct(uuid.New(), uuid.New(), "Hammer", decimal.RequireFromString("9.99"))
	if err := ValidateProduct(valid); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := ValidateProduct(nil); err == nil {
		t.Error("nil product must fail")
	}

	noSupplier := *valid
	noSupplier.SupplierID = uuid.Nil
	if err := ValidateProduct(&noSupplier); err == nil {
		t.Error("missing supplier must fail")
	}

	badPrice := *valid
	badPrice.Price = decimal.RequireFromString("-0.01")
	if err := ValidateProduct(&badPrice); err == nil {
		t.Error("negative price must fail")
	}
}

func TestValidateQuantity(t *testing.T) {
	if err := ValidateQuantity(0); err != nil {
		t.Errorf("zero must pass: %v", err)
	}
	if err := ValidateQuantity(-1); err == nil {
		t.Error("negative must fail")
	}
	if err := ValidateQuantity(MaxQuantity); err != nil {
		t.Errorf("max must pass: %v", err)
	}
	// Would wrap to 5 when narrowed to int32.
	if err := ValidateQuantity(1<<32 + 5); err == nil {
		t.Error("value beyond int32 must fail")
	}
	if err := ValidateQuantity(MaxQuantity + 1); err == nil {
		t.Error("value one past max must fail")
	}
}
