package ports_test

import (
	"testing"

	mocks "github.com/yuvrajjangir/AlphaAI-Backend/internal/mocks/auth"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/ports"
)

// This test only verifies that our mocks conform to the ports at compile time.
func TestMocksImplementPorts(t *testing.T) {
	t.Helper()

	var _ ports.TokenVerifier = (*mocks.StaticTokenVerifier)(nil)
}
