package utils

import "github.com/google/uuid"

// KeyGenerator produces stable record keys for newly created library
// items. Keys are UUIDv7 so they sort roughly by creation time, with a
// random UUID fallback when the monotonic source fails.
type KeyGenerator struct {
}

func NewKeyGenerator() *KeyGenerator {
	return &KeyGenerator{}
}

func (g *KeyGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}
