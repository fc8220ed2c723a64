// internal/handlers/rooms_test.go
package handlers

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRoomCodeShape(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := generateRoomCode()
		assert.Len(t, code, roomCodeLength)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(string(roomCodeAlphabet), r),
				"unexpected rune %q in room code %q", r, code)
		}
	}
}

func TestGenerateRoomCodeConcurrent(t *testing.T) {
	// Create requests generate codes from many goroutines at once; the
	// generator must hold up under the race detector.
	const workers = 8
	const perWorker = 200

	var mu sync.Mutex
	codes := make(map[string]struct{})

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				code := generateRoomCode()
				assert.Len(t, code, roomCodeLength)
				mu.Lock()
				codes[code] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// 32^6 possible codes; 1600 draws colliding down to a handful would mean
	// the generators were not independent.
	assert.Greater(t, len(codes), workers*perWorker/2)
}
