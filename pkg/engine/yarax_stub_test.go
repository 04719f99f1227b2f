//go:build !cgo || !yarax

package engine

import (
	"errors"
	"testing"
)

func TestYaraXUnavailable(t *testing.T) {
	_, err := New("yarax")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Expected ErrUnavailable, got %v", err)
	}
}
