package util

import (
	"fmt"
	"time"

	"github.com/jeffersontgc/anastore/internal/models"
)

// ValidateAmountCent validates a money amount in cents (positive, capped).
func ValidateAmountCent(amountCent int64) error {
	if amountCent <= 0 {
		return fmt.Errorf("amount must be positive, got %d", amountCent)
	}
	if amountCent >= 1_000_000_000 { // 10 million in currency units
		return fmt.Errorf("amount too large, got %d", amountCent)
	}
	return nil
}

// ValidateDate validates a date string (must be YYYY-MM-DD).
func ValidateDate(dateStr string) error {
	if dateStr == "" {
		return fmt.Errorf("date is empty")
	}
	_, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return fmt.Errorf("invalid date format: %w", err)
	}
	return nil
}

// ValidateProductType validates a product category against the fixed set.
func ValidateProductType(t string) error {
	if t == "" {
		return fmt.Errorf("product type is empty")
	}
	if !models.ProductType(t).Valid() {
		return fmt.Errorf("unknown product type %q", t)
	}
	return nil
}

// ValidateDebtStatus validates a debt lifecycle status.
func ValidateDebtStatus(s string) error {
	if s == "" {
		return fmt.Errorf("status is empty")
	}
	if !models.DebtStatus(s).Valid() {
		return fmt.Errorf("unknown debt status %q", s)
	}
	return nil
}
