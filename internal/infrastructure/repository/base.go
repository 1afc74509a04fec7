// Package repository implements the domain repository interfaces over gorm.
package repository

import (
	"context"

	"gorm.io/gorm"

	"gitgate/internal/shared/db"
)

// conn resolves the transaction-bound handle when the context carries one,
// falling back to the repository's own connection.
func conn(ctx context.Context, base *gorm.DB) *gorm.DB {
	return db.GetTxFromContext(ctx, base)
}
