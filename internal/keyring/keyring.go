package keyring

import (
	"errors"
	"fmt"
	"os"
	"strings"

	gokeyring "github.com/zalando/go-keyring"
)

const (
	ServiceName = "kiho-worktime-puncher"
	KeyName     = "api-key"

	// EnvAPIKey overrides every other API key source
	EnvAPIKey = "KIHOPUNCH_API_KEY"
)

var ErrKeyNotFound = errors.New("api key not found in keyring")

// Keyring provides secure key storage abstraction
type Keyring interface {
	GetKey() (string, error)
	SetKey(apiKey string) error
	DeleteKey() error
	IsAvailable() bool
}

// NewKeyring returns the system keyring (macOS Keychain, Secret Service,
// Windows Credential Manager).
func NewKeyring() Keyring {
	return &systemKeyring{service: ServiceName, user: KeyName}
}

type systemKeyring struct {
	service string
	user    string
}

// GetKey retrieves the API key from the system keyring
func (k *systemKeyring) GetKey() (string, error) {
	key, err := gokeyring.Get(k.service, k.user)
	if err != nil {
		if errors.Is(err, gokeyring.ErrNotFound) {
			return "", ErrKeyNotFound
		}
		return "", fmt.Errorf("failed to retrieve key from keyring: %w", err)
	}

	if strings.TrimSpace(key) == "" {
		return "", ErrKeyNotFound
	}

	return key, nil
}

// SetKey stores the API key in the system keyring
func (k *systemKeyring) SetKey(apiKey string) error {
	if strings.TrimSpace(apiKey) == "" {
		return errors.New("api key cannot be empty")
	}

	if err := gokeyring.Set(k.service, k.user, apiKey); err != nil {
		return fmt.Errorf("failed to store key in keyring: %w", err)
	}

	return nil
}

// DeleteKey removes the API key from the system keyring
func (k *systemKeyring) DeleteKey() error {
	err := gokeyring.Delete(k.service, k.user)
	if err != nil {
		if errors.Is(err, gokeyring.ErrNotFound) {
			return ErrKeyNotFound
		}
		return fmt.Errorf("failed to delete key from keyring: %w", err)
	}

	return nil
}

// IsAvailable checks if the system keyring is accessible
func (k *systemKeyring) IsAvailable() bool {
	testUser := "__kihopunch_availability_test__"
	if err := gokeyring.Set(k.service, testUser, "test"); err != nil {
		return false
	}

	_ = gokeyring.Delete(k.service, testUser)
	return true
}

// ResolveAPIKey picks the API key from, in order, the environment, the
// config file value and the keyring. configKey is ignored when empty.
func ResolveAPIKey(k Keyring, configKey string) (string, error) {
	if key := strings.TrimSpace(os.Getenv(EnvAPIKey)); key != "" {
		return key, nil
	}
	if key := strings.TrimSpace(configKey); key != "" {
		return key, nil
	}
	if k == nil {
		return "", ErrKeyNotFound
	}
	return k.GetKey()
}
