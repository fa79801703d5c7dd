package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base carries the gorm handle repositories build on. Repositories embed it
// and use WithTx to rebind onto an open transaction.
type Base struct {
	db *gorm.DB
}

func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the handle bound to ctx.
func (b Base) DB(ctx context.Context) *gorm.DB {
	return b.db.WithContext(ctx)
}

// WithTx returns a Base bound to the given transaction handle.
func (b Base) WithTx(tx *gorm.DB) Base {
	return Base{db: tx}
}
