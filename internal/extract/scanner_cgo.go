//go:build cgo

package extract

// NewScanner returns the scanner registered under name.
func NewScanner(name string) (Scanner, error) {
	switch name {
	case "", "regex":
		return RegexScanner{}, nil
	case "treesitter":
		return NewTreeSitterScanner(), nil
	}
	return nil, &UnknownScannerError{Name: name}
}
