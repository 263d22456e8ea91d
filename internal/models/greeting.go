package models

// Greeting représente la réponse de l'endpoint de salutation
type Greeting struct {
	Letter string `json:"letter"`
}

// NewGreeting construit la réponse pour la lettre donnée
func NewGreeting(letter string) Greeting {
	return Greeting{Letter: letter}
}
