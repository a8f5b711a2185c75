package metadata

import (
	"strings"
	"testing"
)

func TestLoadBlocksDelegatesToRegistry(t *testing.T) {
	doc := `[{"id": 0, "name": "Air", "isEmpty": true}]`
	reg, err := LoadBlocks(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadBlocks: %v", err)
	}
	if !reg.IsAir(reg.AirID()) {
		t.Fatal("registry loaded by LoadBlocks does not recognize its own air id")
	}
}
