// Package serialize holds string formatting helpers for consensus types used
// in structured log fields.
package serialize

import (
	"fmt"

	"github.com/attestantio/go-eth2-client/spec/phase0"
)

// RootAsString converts a phase0.Root to a string.
func RootAsString(root phase0.Root) string {
	return fmt.Sprintf("%#x", root)
}

// HashAsString converts a phase0.Hash32 to a string.
func HashAsString(hash phase0.Hash32) string {
	return fmt.Sprintf("%#x", hash)
}

// SlotAsString converts a phase0.Slot to a string.
func SlotAsString(slot phase0.Slot) string {
	return fmt.Sprintf("%d", slot)
}

// BLSSignatureToString converts a phase0.BLSSignature to a string.
func BLSSignatureToString(s *phase0.BLSSignature) string {
	return fmt.Sprintf("%#x", s)
}
