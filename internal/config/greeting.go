package config

import "strings"

// GreetingProvider expose la lettre configurée au démarrage.
// La valeur est copiée une seule fois et ne change plus ensuite.
type GreetingProvider struct {
	letter string
}

// NewGreetingProvider crée le fournisseur de lettre à partir de la configuration chargée
func NewGreetingProvider(cfg *Config) (*GreetingProvider, error) {
	if cfg == nil || strings.TrimSpace(cfg.Greeting.Letter) == "" {
		return nil, ErrMissingLetter
	}
	return &GreetingProvider{letter: cfg.Greeting.Letter}, nil
}

// Letter retourne la lettre configurée
func (p *GreetingProvider) Letter() string {
	return p.letter
}
