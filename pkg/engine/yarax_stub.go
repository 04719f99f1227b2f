//go:build !cgo || !yarax

package engine

import "fmt"

// NewYaraX stub for builds without YARA-X (non-CGO or missing yarax tag).
func NewYaraX() (Engine, error) {
	return nil, fmt.Errorf("yara-x engine: %w (build with CGO_ENABLED=1 and -tags=yarax)", ErrUnavailable)
}
