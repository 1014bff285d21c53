package badwords

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/stayvia/booking/logger"
)

// wordSet holds the blocked words, lowercased. Guarded for reloads.
var (
	mu      sync.RWMutex
	wordSet map[string]struct{}
)

// Load reads the blocked-words file, one word per line. Safe to call again
// to reload; the new list replaces the old atomically.
func Load(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read bad words file: %w", err)
	}

	next := make(map[string]struct{})
	for _, line := range strings.Split(string(data), "\n") {
		word := strings.ToLower(strings.TrimSpace(line))
		if word != "" {
			next[word] = struct{}{}
		}
	}

	mu.Lock()
	wordSet = next
	mu.Unlock()

	logger.InfoLogger.Infof("Loaded %d blocked words", len(next))
	return nil
}

// Contains reports whether any word in the text is on the blocked list.
// Used to screen free-text fields like special requests before storing them.
func Contains(text string) bool {
	mu.RLock()
	defer mu.RUnlock()

	if len(wordSet) == 0 {
		return false
	}

	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})
	for _, word := range words {
		if _, found := wordSet[word]; found {
			return true
		}
	}
	return false
}
