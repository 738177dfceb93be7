package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// hashKey digests a key-options struct such as [ChartKeyOpts] into
// "<kind>:<hex>". Field order is fixed by the struct, so equal requests
// always map to the same entry.
func hashKey(kind string, opts any) string {
	data, _ := json.Marshal(opts)
	return kind + ":" + Hash(data)
}

// Hash is the hex SHA-256 of data. It names file cache entries, image
// locators and the item lists behind cached collages.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
