package registration

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// PassIDPrefix starts every pass ID.
const PassIDPrefix = "PASS-"

const passIDLength = 10

// NewPassID returns a fresh pass ID: PassIDPrefix followed by ten characters
// from the URL-safe nanoid alphabet.
func NewPassID() (string, error) {
	id, err := gonanoid.New(passIDLength)
	if err != nil {
		return "", fmt.Errorf("generating pass ID: %w", err)
	}
	return PassIDPrefix + id, nil
}
