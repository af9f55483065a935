package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/courtside/badminton-league/models"
	"github.com/courtside/badminton-league/repositories"
)

// Wallet is a user's credit balance together with the entries that produced it.
type Wallet struct {
	UserID  int                   `json:"user_id"`
	Balance int                   `json:"balance"`
	Entries []*models.LedgerEntry `json:"entries"`
}

type WalletService interface {
	GetWallet(ctx context.Context, userID int) (*Wallet, error)
}

type walletService struct {
	userRepo   repositories.UserRepository
	ledgerRepo repositories.LedgerRepository
}

func NewWalletService(userRepo repositories.UserRepository, ledgerRepo repositories.LedgerRepository) WalletService {
	return &walletService{
		userRepo:   userRepo,
		ledgerRepo: ledgerRepo,
	}
}

func (s *walletService) GetWallet(ctx context.Context, userID int) (*Wallet, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}

	entries, err := s.ledgerRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries for user %d: %w", userID, err)
	}

	return &Wallet{
		UserID:  user.ID,
		Balance: user.Credits,
		Entries: entries,
	}, nil
}
