// Package identity resolves on-chain accounts to DIDs and investor classes,
// and hashes participation policies for the whitelist check.
package identity

import (
	"encoding/hex"
	"errors"

	"launchpad-backend/internal/models"

	"golang.org/x/crypto/blake2b"
	"gorm.io/gorm"
)

var ErrIdentityNotFound = errors.New("No identity registered for account")

type Resolver struct {
	DB *gorm.DB
}

// Resolve returns the identity for an account.
func (r *Resolver) Resolve(tx *gorm.DB, account string) (*models.Identity, error) {
	var id models.Identity
	if err := tx.Where("account = ?", account).First(&id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}
	return &id, nil
}

// Register upserts an account's identity. Investor class defaults to retail.
func (r *Resolver) Register(tx *gorm.DB, account, did, investorType string) error {
	if investorType == "" {
		investorType = models.InvestorRetail
	}
	id := models.Identity{Account: account, DID: did, InvestorType: investorType}
	return tx.Save(&id).Error
}

// PolicyHash is the blake2b-256 digest of a participation policy document,
// hex encoded. Projects store it at creation; participants must present a
// matching digest.
func PolicyHash(policy []byte) string {
	sum := blake2b.Sum256(policy)
	return hex.EncodeToString(sum[:])
}
