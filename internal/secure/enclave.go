// Package secure keeps credential material out of plain process memory.
// The client secret read at startup lives in an encrypted memguard enclave
// and is only decrypted for the moment the token request body is built.
package secure

import (
	"sync"

	"github.com/awnumar/memguard"
)

// Buffer holds a sensitive value in an encrypted enclave.
type Buffer struct {
	enclave *memguard.Enclave
	mu      sync.RWMutex

	destroyed bool
}

// NewBuffer seals the given value into a protected buffer. The input slice
// is wiped by memguard; callers must not reuse it. An empty value yields an
// empty buffer (memguard rejects zero-length allocations).
func NewBuffer(data []byte) *Buffer {
	if len(data) == 0 {
		return &Buffer{}
	}
	return &Buffer{enclave: memguard.NewEnclave(data)}
}

// NewBufferFromString seals a string value.
func NewBufferFromString(s string) *Buffer {
	return NewBuffer([]byte(s))
}

// IsEmpty reports whether the buffer holds no value.
func (b *Buffer) IsEmpty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.enclave == nil || b.destroyed
}

// With decrypts the value, passes it to fn, and wipes the plaintext before
// returning. The slice handed to fn is invalid after fn returns.
func (b *Buffer) With(fn func(value []byte) error) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.enclave == nil || b.destroyed {
		return fn(nil)
	}

	locked, err := b.enclave.Open()
	if err != nil {
		return err
	}
	defer locked.Destroy()

	return fn(locked.Bytes())
}

// Destroy marks the buffer unusable. Idempotent.
func (b *Buffer) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.destroyed = true
}
