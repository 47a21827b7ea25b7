package domain

import (
	"crypto/sha256"
	"crypto/subtle"
	"time"
)

// User is a directory entry: an identity, its credential and the one account
// it owns. All three are fixed at registration.
type User struct {
	id         string
	credential string
	account    *Account
	createdAt  time.Time
}

func NewUser(id, credential string, account *Account) *User {
	return &User{
		id:         id,
		credential: credential,
		account:    account,
		createdAt:  time.Now(),
	}
}

func (u *User) ID() string {
	return u.id
}

func (u *User) Account() *Account {
	return u.account
}

func (u *User) CreatedAt() time.Time {
	return u.createdAt
}

// CredentialMatches compares candidate with the stored credential in constant
// time. Both sides are hashed first so the comparison does not leak length.
func (u *User) CredentialMatches(candidate string) bool {
	return CredentialsEqual(u.credential, candidate)
}

// CredentialsEqual is the constant-time comparison used by CredentialMatches.
func CredentialsEqual(stored, candidate string) bool {
	s := sha256.Sum256([]byte(stored))
	c := sha256.Sum256([]byte(candidate))
	return subtle.ConstantTimeCompare(s[:], c[:]) == 1
}
