package util

import (
	"fmt"

	"github.com/google/uuid"
)

// GenerateUUID returns a random (v4) UUID string. uuid.New panics only if the
// system entropy source fails.
func GenerateUUID() string {
	return uuid.New().String()
}

// MessageID derives a stable id for a message that carries none of its own.
func MessageID(topic string, partition int, offset int64) string {
	name := fmt.Sprintf("%s-%d-%d", topic, partition, offset)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}
