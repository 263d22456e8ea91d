package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// DefaultEnvFiles fichiers .env chargés quand aucun n'est précisé
var DefaultEnvFiles = []string{".env", ".env.local"}

// LoadEnvFiles charge les fichiers .env dans l'environnement du processus.
// Les variables déjà définies ne sont jamais écrasées. Un fichier absent
// n'est une erreur que s'il a été demandé explicitement.
func LoadEnvFiles(files ...string) error {
	explicit := len(files) > 0
	if !explicit {
		files = DefaultEnvFiles
	}

	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) && !explicit {
				continue
			}
			return fmt.Errorf("env file %s: %w", file, err)
		}
		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", file, err)
		}
	}

	return nil
}
