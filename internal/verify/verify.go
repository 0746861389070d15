package verify

import (
	"crypto/sha512"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// Digits is the length of a security code.
const Digits = 60

// Code returns the security code two users compare to verify their chat.
// It is the same whichever side computes it.
func Code(a, b string) string {
	if b < a {
		a, b = b, a
	}
	sum := sha512.Sum512([]byte("guftagu-security-code\x00" + a + "\x00" + b))
	var sb strings.Builder
	sb.Grow(Digits)
	for _, c := range sum[:Digits] {
		sb.WriteByte('0' + c%10)
	}
	return sb.String()
}

// Groups splits a code into blocks of five digits for display.
func Groups(code string) []string {
	var out []string
	for len(code) > 5 {
		out = append(out, code[:5])
		code = code[5:]
	}
	if code != "" {
		out = append(out, code)
	}
	return out
}

// Format lays a code out as rows of four groups.
func Format(code string) string {
	groups := Groups(code)
	var rows []string
	for i := 0; i < len(groups); i += 4 {
		end := min(i+4, len(groups))
		rows = append(rows, strings.Join(groups[i:end], " "))
	}
	return strings.Join(rows, "\n")
}

// RenderQR converts a string to a compact text QR code using Unicode
// half-block characters, two modules per character row.
func RenderQR(content string) (string, error) {
	qr, err := qrcode.New(content, qrcode.Low)
	if err != nil {
		return "", fmt.Errorf("qr encode: %w", err)
	}
	qr.DisableBorder = false

	bitmap := qr.Bitmap()
	rows := len(bitmap)
	cols := 0
	if rows > 0 {
		cols = len(bitmap[0])
	}

	var sb strings.Builder
	for y := 0; y < rows; y += 2 {
		sb.WriteString("  ")
		for x := 0; x < cols; x++ {
			top := bitmap[y][x]
			bot := false
			if y+1 < rows {
				bot = bitmap[y+1][x]
			}
			switch {
			case top && bot:
				sb.WriteRune('█')
			case top && !bot:
				sb.WriteRune('▀')
			case !top && bot:
				sb.WriteRune('▄')
			default:
				sb.WriteRune(' ')
			}
		}
		sb.WriteRune('\n')
	}
	return sb.String(), nil
}

// PNG encodes content as a QR code image of the given pixel size.
func PNG(content string, size int) ([]byte, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("qr png: %w", err)
	}
	return png, nil
}
