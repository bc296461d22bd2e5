// Package auth provides a high-level API for persisting and retrieving user credentials from the system keyring.
package auth

import (
	"github.com/zalando/go-keyring"
)

const (
	service = "gtplayer-cli"
	user    = "api-token"
)

// SetToken persists the recommendation API token to the system keyring.
func SetToken(token string) error {
	return keyring.Set(service, user, token)
}

// GetToken retrieves the recommendation API token from the system keyring.
func GetToken() (string, error) {
	return keyring.Get(service, user)
}

// DeleteToken removes the recommendation API token from the system keyring.
func DeleteToken() error {
	return keyring.Delete(service, user)
}
