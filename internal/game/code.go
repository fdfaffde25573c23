package game

import (
	"errors"
	"strings"
)

const CodeLen = 4

var (
	ErrMalformedGuess        = errors.New("guess must be exactly 4 digits (0-9)")
	ErrRandomSourceExhausted = errors.New("random source exhausted while generating secret")
	ErrGameOver              = errors.New("game already won")
	ErrSessionNotFound       = errors.New("session not found")
)

// Code is an ordered sequence of four digits. A secret code has pairwise
// distinct digits; a guess may repeat them.
type Code [CodeLen]uint8

func (c Code) String() string {
	var b [CodeLen]byte
	for i, d := range c {
		b[i] = '0' + d
	}
	return string(b[:])
}

func (c Code) valid() bool {
	for _, d := range c {
		if d > 9 {
			return false
		}
	}
	return true
}

func (c Code) distinct() bool {
	var seen [10]bool
	for _, d := range c {
		if d > 9 || seen[d] {
			return false
		}
		seen[d] = true
	}
	return true
}

// ParseGuess turns player text into a Code.
func ParseGuess(s string) (Code, error) {
	s = strings.TrimSpace(s)
	if !valid4Digits(s) {
		return Code{}, ErrMalformedGuess
	}
	var c Code
	for i := 0; i < CodeLen; i++ {
		c[i] = s[i] - '0'
	}
	return c, nil
}

func valid4Digits(s string) bool {
	if len(s) != CodeLen {
		return false
	}
	for i := 0; i < CodeLen; i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
