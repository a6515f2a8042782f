package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"inventory-sales-service/internal/store"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	salesIDLength         = 6
	salesIDFallbackLength = 10
	maxSalesIDAttempts    = 5
)

// RandomCode returns n characters from [A-Z0-9], drawing entropy from version 4 UUIDs.
func RandomCode(n int) (string, error) {
	code := make([]byte, 0, n)
	for len(code) < n {
		u, err := uuid.NewRandom()
		if err != nil {
			return "", err
		}
		for i, b := range u {
			// Bytes 6 and 8 carry the version and variant bits.
			if i == 6 || i == 8 {
				continue
			}
			// 252 is the largest multiple of 36 below 256; rejecting above it keeps every
			// character equally likely.
			if b >= 252 {
				continue
			}
			code = append(code, codeAlphabet[int(b)%len(codeAlphabet)])
			if len(code) == n {
				break
			}
		}
	}
	return string(code), nil
}

// allocateSalesID picks a sales id that is not yet taken. It tries maxSalesIDAttempts
// short codes, then one longer code, and gives up with ErrSalesIDExhausted.
func (s *Service) allocateSalesID(ctx context.Context, tx store.OrderTx) (string, error) {
	for attempt := 1; attempt <= maxSalesIDAttempts+1; attempt++ {
		length := salesIDLength
		if attempt > maxSalesIDAttempts {
			length = salesIDFallbackLength
		}

		code, err := s.newCode(length)
		if err != nil {
			return "", fmt.Errorf("inventory: failed to generate sales id: %w", err)
		}
		candidate := s.salesIDPrefix + code

		exists, err := tx.SalesIDExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		s.logger.Warn("sales id collision",
			zap.String("sales_id", candidate),
			zap.Int("attempt", attempt))
	}
	return "", ErrSalesIDExhausted
}
