package phase

import (
	"errors"
	"fmt"
)

// ErrInputMissing marks a phase failure caused by a required input artifact
// being absent. Fatal for the phase; the message carries the missing path.
var ErrInputMissing = errors.New("required input artifact missing")

func missingInput(path string) error {
	return fmt.Errorf("%w: %s", ErrInputMissing, path)
}
