package keygen

import "github.com/google/uuid"

// UUIDGenerator hands out random UUID strings for flight ids.
type UUIDGenerator struct{}

func New() UUIDGenerator {
	return UUIDGenerator{}
}

func (UUIDGenerator) Generate() string {
	return uuid.NewString()
}
