package token

import (
	"fmt"
	"strconv"
	"unicode/utf16"
)

// Environment is the coarse runtime tag that is part of every storage key.
type Environment string

const (
	// EnvironmentServer is used for process-local or server-side storage.
	EnvironmentServer Environment = "server"
	// EnvironmentBrowser is used when tokens are persisted as cookies.
	EnvironmentBrowser Environment = "browser"
)

const defaultClientKey = "default"

// KeyGenerator produces storage keys that are unique per client id and
// environment, so several client instances can share one storage medium.
// Format: oc_<hash(clientID)>_<env>_<purpose>
type KeyGenerator struct {
	clientHash  string
	environment Environment
}

func NewKeyGenerator(clientID string, env Environment) KeyGenerator {
	if clientID == "" {
		clientID = defaultClientKey
	}
	return KeyGenerator{
		clientHash:  HashClientID(clientID),
		environment: env,
	}
}

// Key returns the storage key for a token slot.
func (g KeyGenerator) Key(kind Kind) string {
	return fmt.Sprintf("oc_%s_%s_%s", g.clientHash, g.environment, kind)
}

// Keys returns the storage keys of every slot, for cleanup.
func (g KeyGenerator) Keys() map[Kind]string {
	keys := make(map[Kind]string, len(Kinds))
	for _, k := range Kinds {
		keys[k] = g.Key(k)
	}
	return keys
}

// HashClientID is the 32-bit string hash used by the browser SDK
// (h = h*31 + c over UTF-16 code units), rendered in base36. Cookies written
// by either SDK therefore use the same names.
func HashClientID(clientID string) string {
	var h int32
	for _, c := range utf16.Encode([]rune(clientID)) {
		h = (h << 5) - h + int32(c)
	}
	abs := int64(h)
	if abs < 0 {
		abs = -abs
	}
	return strconv.FormatInt(abs, 36)
}
