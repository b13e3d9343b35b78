package utils

import (
	"crypto/rand"
	"encoding/binary"
	"strings"

	"github.com/bytedance/gopkg/lang/fastrand"
)

const alphanum = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandDigits returns n decimal digits. Fast, not secret-grade; reminder and
// note IDs only need to be unlikely to collide.
func RandDigits(n int) string {
	if n <= 0 {
		return ""
	}

	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(byte('0' + fastrand.Uint32n(10)))
	}
	return b.String()
}

// RandStr returns n alphanumeric characters drawn from crypto/rand.
func RandStr(n int) string {
	if n <= 0 {
		return ""
	}

	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		var buf [8]byte
		_, _ = rand.Read(buf[:])
		idx := binary.LittleEndian.Uint64(buf[:]) % uint64(len(alphanum))
		b.WriteByte(alphanum[idx])
	}
	return b.String()
}

// Truncate cuts content to maxLen bytes, marking the cut with an ellipsis.
func Truncate(content string, maxLen int) string {
	if len(content) <= maxLen {
		return content
	}
	return content[:maxLen] + "..."
}

// Truncate80 is the one-line display width used in chat replies.
func Truncate80(content string) string {
	return Truncate(content, 80)
}
