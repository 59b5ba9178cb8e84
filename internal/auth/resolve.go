package auth

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/notevault/notevault/internal/db/controller/user"
	"github.com/notevault/notevault/internal/db/models"
)

// ResolutionKind tags the outcome of resolving federated identity claims.
type ResolutionKind int

const (
	// ResolvedExisting reuses an identity already linked to the subject.
	ResolvedExisting ResolutionKind = iota
	// ResolvedMigrated attached the subject to the caller's guest identity.
	ResolvedMigrated
	// ResolvedCreated created a fresh federated identity.
	ResolvedCreated
)

// Resolution pairs the resolved identity with how it was obtained.
type Resolution struct {
	Kind ResolutionKind
	User *models.User
}

// ResolveFederated maps ID-token claims onto exactly one identity row.
//
// guestID is the internal id of the caller's own guest session, zero when
// the caller holds none. Migration only ever targets that id, so a federated
// login cannot absorb an unrelated guest's data.
//
// The unique index on the subject column is the concurrency guard: if a
// concurrent callback wins the subject between our lookup and our write, the
// duplicate-key failure is resolved by re-reading the winner's row.
func ResolveFederated(db *gorm.DB, claims *Claims, guestID uint64) (*Resolution, error) {
	existing, err := user.FindBySub(db, claims.Sub)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		return &Resolution{Kind: ResolvedExisting, User: existing}, nil
	}

	if guestID != 0 {
		migrated, errMigrate := user.MigrateGuestToFederated(db, guestID, claims.Sub, claims.Email, claims.Name)

		switch {
		case errMigrate == nil:
			return &Resolution{Kind: ResolvedMigrated, User: migrated}, nil
		case errors.Is(errMigrate, gorm.ErrDuplicatedKey):
			return lookupWinner(db, claims.Sub)
		case errors.Is(errMigrate, user.ErrNotGuest):
			// The session points at a deleted or already-migrated identity.
			// Fall through and create a fresh federated row.
		default:
			return nil, errMigrate
		}
	}

	created, err := user.CreateFederated(db, claims.Sub, claims.Email, claims.Name)
	if err == nil {
		return &Resolution{Kind: ResolvedCreated, User: created}, nil
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return lookupWinner(db, claims.Sub)
	}

	return nil, err
}

// lookupWinner re-reads the row of whoever won a concurrent sign-in race.
func lookupWinner(db *gorm.DB, sub string) (*Resolution, error) {
	winner, err := user.FindBySub(db, sub)
	if err != nil {
		return nil, err
	}

	if winner == nil {
		return nil, fmt.Errorf("identity for subject %q vanished after duplicate-key failure", sub)
	}

	return &Resolution{Kind: ResolvedExisting, User: winner}, nil
}
