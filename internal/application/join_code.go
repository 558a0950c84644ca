package application

import (
	"crypto/rand"
	"fmt"
	"io"
	"time"
)

// joinCodeAlphabet omits characters that read ambiguously when a code is
// shared aloud or copied by hand (0/O, 1/I/L).
const joinCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const joinCodeLength = 5

// NewJoinCode generates a short opaque code such as "M7QK2F". Codes carry no
// meaning; uniqueness among active meetings is enforced at creation time.
func NewJoinCode() string {
	buf := make([]byte, joinCodeLength)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return fmt.Sprintf("M%d", time.Now().UnixNano()%100000)
	}
	code := make([]byte, 0, joinCodeLength+1)
	code = append(code, 'M')
	for _, b := range buf {
		code = append(code, joinCodeAlphabet[int(b)%len(joinCodeAlphabet)])
	}
	return string(code)
}
