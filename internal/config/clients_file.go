package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// clientsFile is the AUTH_CLIENTS_FILE layout:
//
//	clients:
//	  - id: agent
//	    secret_hash: $2a$10$...
//	  - id: dashboard
//	    secret_hash: $2a$10$...
//	    read_only: true
type clientsFile struct {
	Clients []clientEntry `yaml:"clients"`
}

type clientEntry struct {
	ID         string `yaml:"id"`
	SecretHash string `yaml:"secret_hash"`
	ReadOnly   bool   `yaml:"read_only"`
}

// loadClientsFile merges file entries into auth. A missing file is not an
// error; entries from the file override AUTH_CLIENTS for the same id.
func loadClientsFile(path string, auth *AuthConfig) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	var file clientsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	for i, entry := range file.Clients {
		if entry.ID == "" || entry.SecretHash == "" {
			return fmt.Errorf("%s: client %d needs id and secret_hash", path, i)
		}
		auth.Clients[entry.ID] = entry.SecretHash
		if entry.ReadOnly && !slices.Contains(auth.ReadOnlyClients, entry.ID) {
			auth.ReadOnlyClients = append(auth.ReadOnlyClients, entry.ID)
		}
	}
	return nil
}
