package redis

import (
	"fmt"
	"strings"
)

// KeyPrefixSlot namespaces every slot key.
const KeyPrefixSlot = "manaforge:slot:"

// SlotKey returns the Redis key backing the named slot.
func SlotKey(name string) string {
	return KeyPrefixSlot + name
}

// SlotName extracts the slot name from a Redis key.
func SlotName(key string) (string, error) {
	if !strings.HasPrefix(key, KeyPrefixSlot) || len(key) == len(KeyPrefixSlot) {
		return "", fmt.Errorf("invalid slot key: %s", key)
	}
	return key[len(KeyPrefixSlot):], nil
}
