package pages

import (
	"crypto/rand"
	"encoding/hex"
)

// generateID 生成带前缀的唯一标识符，格式 prefix-xxxxxxxxxxxx
func generateID(prefix string) string {
	b := make([]byte, 6)
	rand.Read(b)
	return prefix + "-" + hex.EncodeToString(b)
}
