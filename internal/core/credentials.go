package core

import (
	"fmt"

	"github.com/deskhaven/authcore/pkg/crypto"
)

// newCredential hashes the password under a fresh random salt.
func newCredential(loginID, password string) (*Credential, error) {
	salt, err := crypto.GenerateSalt()
	if err != nil {
		return nil, err
	}

	digest, err := crypto.HashPassword(password, salt)
	if err != nil {
		return nil, fmt.Errorf("credential %s: %w", loginID, err)
	}

	return &Credential{LoginID: loginID, salt: salt, digest: digest}, nil
}

// verify recomputes the digest for the candidate password with the stored salt
// and compares in constant time. It reveals nothing beyond pass/fail.
func (c *Credential) verify(password string) bool {
	return crypto.VerifyPassword(password, c.salt, c.digest)
}

// changePassword re-hashes the new password under a fresh salt.
func (c *Credential) changePassword(newPassword string) error {
	salt, err := crypto.GenerateSalt()
	if err != nil {
		return err
	}

	digest, err := crypto.HashPassword(newPassword, salt)
	if err != nil {
		return fmt.Errorf("credential %s: %w", c.LoginID, err)
	}

	c.salt = salt
	c.digest = digest
	return nil
}

// addCredential attaches a new login id to the user. The caller is responsible
// for global login-id disambiguation; the user only rejects its own duplicates.
func (u *User) addCredential(loginID, password string) (*Credential, error) {
	if _, exists := u.Credentials[loginID]; exists {
		return nil, fmt.Errorf("user %s: login id %s already registered", u.ID, loginID)
	}

	cred, err := newCredential(loginID, password)
	if err != nil {
		return nil, err
	}

	u.Credentials[loginID] = cred
	return cred, nil
}

// verifyCredential checks the password for one of the user's login ids.
func (u *User) verifyCredential(loginID, password string) bool {
	cred, ok := u.Credentials[loginID]
	if !ok {
		return false
	}
	return cred.verify(password)
}

// changePassword re-hashes the credential for loginID. Unknown login ids are a
// no-op, mirroring the store contract; the facade rejects them earlier.
func (u *User) changePassword(loginID, newPassword string) error {
	cred, ok := u.Credentials[loginID]
	if !ok {
		return nil
	}
	return cred.changePassword(newPassword)
}
