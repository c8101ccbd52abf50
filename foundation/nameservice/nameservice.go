// Package nameservice reads the zblock/accounts folder and provides the
// named accounts (deployer, user, ...) the node and the deploy scripts
// refer to by name.
package nameservice

import (
	"crypto/ecdsa"
	"fmt"
	"io/fs"
	"maps"
	"path"
	"path/filepath"
	"strings"

	"github.com/ardanlabs/fundme/foundation/blockchain/database"
	"github.com/ethereum/go-ethereum/crypto"
)

// NameService maintains the named accounts found on disk.
type NameService struct {
	names map[database.AccountID]string
	keys  map[string]*ecdsa.PrivateKey
}

// New constructs a name service with the keys in the root folder. The name
// of an account is its key file name without the .ecdsa extension.
func New(root string) (*NameService, error) {
	ns := NameService{
		names: make(map[database.AccountID]string),
		keys:  make(map[string]*ecdsa.PrivateKey),
	}

	fn := func(fileName string, info fs.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if path.Ext(fileName) != ".ecdsa" {
			return nil
		}

		privateKey, err := crypto.LoadECDSA(fileName)
		if err != nil {
			return fmt.Errorf("loading %s: %w", fileName, err)
		}

		name := strings.TrimSuffix(path.Base(fileName), ".ecdsa")
		ns.names[database.PublicKeyToAccountID(privateKey.PublicKey)] = name
		ns.keys[name] = privateKey

		return nil
	}

	if err := filepath.Walk(root, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ns, nil
}

// Lookup returns the name for the specified account, or the account
// itself when it has no name.
func (ns *NameService) Lookup(accountID database.AccountID) string {
	name, exists := ns.names[accountID]
	if !exists {
		return string(accountID)
	}
	return name
}

// AccountID returns the account behind the name.
func (ns *NameService) AccountID(name string) (database.AccountID, error) {
	key, exists := ns.keys[name]
	if !exists {
		return "", fmt.Errorf("no account named %q", name)
	}
	return database.PublicKeyToAccountID(key.PublicKey), nil
}

// PrivateKey returns the key of the named account.
func (ns *NameService) PrivateKey(name string) (*ecdsa.PrivateKey, error) {
	key, exists := ns.keys[name]
	if !exists {
		return nil, fmt.Errorf("no account named %q", name)
	}
	return key, nil
}

// Copy returns a copy of the map of accounts and names.
func (ns *NameService) Copy() map[database.AccountID]string {
	return maps.Clone(ns.names)
}
