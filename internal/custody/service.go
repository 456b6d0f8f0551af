// Package custody is the asset escrow ledger. Hold moves free balance into
// escrow, Release moves it back, Transfer settles held funds to a recipient.
// All three expect to run inside the caller's transaction so a failed
// operation leaves prior state unchanged.
package custody

import (
	"errors"

	"launchpad-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrInsufficientBalance = errors.New("Insufficient free balance")

type Service struct {
	DB *gorm.DB
}

func (s *Service) balance(tx *gorm.DB, account, asset string) (*models.Balance, error) {
	var b models.Balance
	err := tx.Where("account = ? AND asset = ?", account, asset).First(&b).Error
	if err == gorm.ErrRecordNotFound {
		b = models.Balance{Account: account, Asset: asset}
		if err := tx.Create(&b).Error; err != nil {
			return nil, err
		}
		return &b, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Hold escrows amount of asset from account's free balance.
func (s *Service) Hold(tx *gorm.DB, account, asset string, amount decimal.Decimal) error {
	if amount.IsZero() {
		return nil
	}
	b, err := s.balance(tx, account, asset)
	if err != nil {
		return err
	}
	if b.Free.LessThan(amount) {
		return ErrInsufficientBalance
	}
	b.Free = b.Free.Sub(amount)
	b.Held = b.Held.Add(amount)
	return tx.Save(b).Error
}

// Release returns held amount to account's free balance. Releasing more than
// is held truncates to the held amount; refunds never mint balance.
func (s *Service) Release(tx *gorm.DB, account, asset string, amount decimal.Decimal) error {
	if amount.IsZero() {
		return nil
	}
	b, err := s.balance(tx, account, asset)
	if err != nil {
		return err
	}
	if amount.GreaterThan(b.Held) {
		amount = b.Held
	}
	b.Held = b.Held.Sub(amount)
	b.Free = b.Free.Add(amount)
	return tx.Save(b).Error
}

// Transfer settles held funds from one account into another's free balance.
func (s *Service) Transfer(tx *gorm.DB, from, to, asset string, amount decimal.Decimal) error {
	if amount.IsZero() {
		return nil
	}
	sender, err := s.balance(tx, from, asset)
	if err != nil {
		return err
	}
	if sender.Held.LessThan(amount) {
		return ErrInsufficientBalance
	}
	sender.Held = sender.Held.Sub(amount)
	if err := tx.Save(sender).Error; err != nil {
		return err
	}
	receiver, err := s.balance(tx, to, asset)
	if err != nil {
		return err
	}
	receiver.Free = receiver.Free.Add(amount)
	return tx.Save(receiver).Error
}

// Deposit credits free balance directly. Test and fixture helper; production
// balances arrive through the bridge, not this service.
func (s *Service) Deposit(tx *gorm.DB, account, asset string, amount decimal.Decimal) error {
	b, err := s.balance(tx, account, asset)
	if err != nil {
		return err
	}
	b.Free = b.Free.Add(amount)
	return tx.Save(b).Error
}
