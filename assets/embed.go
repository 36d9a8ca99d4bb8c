package assets

import (
	"embed"
)

//go:embed cards.json
var FS embed.FS

// DefaultCards returns the bundled card catalog used when CARDS_FILE is unset.
func DefaultCards() ([]byte, error) {
	return FS.ReadFile("cards.json")
}
