package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Client is a billing customer. The email doubles as the login identity for
// the client-facing account, so it is unique across clients.
type Client struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"size:100;not null"`
	Address      string `gorm:"size:200"`
	Phone        string `gorm:"size:20"`
	Email        string `gorm:"size:120;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:256"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SetPassword hashes and stores the password.
func (c *Client) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	c.PasswordHash = string(hash)
	return nil
}

// VerifyPassword checks a candidate password against the stored hash.
func (c *Client) VerifyPassword(plain string) bool {
	if c.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(plain)) == nil
}
