// Package daily owns the per-mode card of the day: which card is the secret,
// how it gets picked at each rollover, and the global counters kept for it.
package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"

	"github.com/robalobadob/ygodle/internal/game"
)

// CardIndex returns a deterministic index in [0, n) for (dayKey, mode) using
// HMAC(salt, "mode:dayKey"). Different salts give unrelated sequences.
func CardIndex(dayKey string, mode game.Mode, salt string, n int) int {
	if n <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(string(mode) + ":" + dayKey))
	sum := h.Sum(nil)
	// first 8 bytes as uint64 for the modulus
	v := binary.BigEndian.Uint64(sum[:8])
	return int(v % uint64(n))
}
