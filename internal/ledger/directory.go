package ledger

import (
	"time"

	"crypto-ledger-go/internal/models"
)

// UserDirectory is the registry of platform users, keyed by external id.
type UserDirectory struct {
	users map[string]*models.User
	order []string
}

func NewUserDirectory() *UserDirectory {
	return &UserDirectory{users: make(map[string]*models.User)}
}

// Register adds a new, unvalidated user. The external id must be unique.
func (d *UserDirectory) Register(externalId, name, email string, now time.Time) (string, error) {
	if _, ok := d.users[externalId]; ok {
		return "", ErrDuplicateUser
	}
	d.users[externalId] = &models.User{
		ExternalId: externalId,
		Name:       name,
		Email:      email,
		CreatedAt:  now,
	}
	d.order = append(d.order, externalId)
	return externalId, nil
}

// MarkValidated sets the validated flag. Not idempotent by contract:
// callers must not rely on re-validation being a no-op.
func (d *UserDirectory) MarkValidated(userId string) error {
	u, ok := d.users[userId]
	if !ok {
		return ErrUnknownUser
	}
	u.Validated = true
	return nil
}

func (d *UserDirectory) Exists(userId string) bool {
	_, ok := d.users[userId]
	return ok
}

func (d *UserDirectory) IsValidated(userId string) bool {
	u, ok := d.users[userId]
	return ok && u.Validated
}

// Users returns all users in registration order.
func (d *UserDirectory) Users() []models.User {
	out := make([]models.User, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, *d.users[id])
	}
	return out
}

// restore replaces the directory contents from a snapshot.
func (d *UserDirectory) restore(users []models.User) {
	d.users = make(map[string]*models.User, len(users))
	d.order = d.order[:0]
	for i := range users {
		u := users[i]
		d.users[u.ExternalId] = &u
		d.order = append(d.order, u.ExternalId)
	}
}
