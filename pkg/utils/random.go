package utils

import (
	"hash/fnv"

	"github.com/google/uuid"
)

// GenerateID создает уникальный идентификатор (ID клиента, корреляция ack).
func GenerateID() string {
	return uuid.NewString()
}

// StringToSeed превращает строку (например, ID игры) в детерминированный сид.
// Один и тот же gameId всегда дает одну и ту же арену.
func StringToSeed(s string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return int64(h.Sum64() & 0x7FFFFFFFFFFFFFFF)
}
