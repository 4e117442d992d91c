package mongodb

import (
	"context"
	"testing"
)

func TestConnectRequiresURI(t *testing.T) {
	if _, _, err := Connect(context.Background(), "  ", "docchat"); err == nil {
		t.Fatalf("expected error for empty uri")
	}
}
