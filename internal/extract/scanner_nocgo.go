//go:build !cgo

package extract

import "errors"

// ErrTreeSitterUnavailable is returned when the binary was built without cgo.
var ErrTreeSitterUnavailable = errors.New("treesitter scanner requires a cgo build")

// NewScanner returns the scanner registered under name.
func NewScanner(name string) (Scanner, error) {
	switch name {
	case "", "regex":
		return RegexScanner{}, nil
	case "treesitter":
		return nil, ErrTreeSitterUnavailable
	}
	return nil, &UnknownScannerError{Name: name}
}
