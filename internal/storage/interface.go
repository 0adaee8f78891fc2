package storage

import (
	"context"

	"github.com/netpong/netpong/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Account operations
	//
	// CreateAccount fails with model.ErrDuplicateUsername when the
	// username is taken. The check-and-insert is atomic so two
	// concurrent creations of the same username cannot both succeed.
	CreateAccount(ctx context.Context, account *model.Account) error
	GetAccountByUsername(ctx context.Context, username string) (*model.Account, error)

	// Win count operations
	IncrementWins(ctx context.Context, username string) error
	GetWins(ctx context.Context, username string) (int, error)
	TopWins(ctx context.Context, limit int) ([]model.WinRecord, error)
}
