package crypto

import (
	"fmt"
	"strings"
)

const (
	playfairAlphabet = "ABCDEFGHIKLMNOPQRSTUVWXYZ" // no J
	playfairFiller   = 'X'
)

// Playfair is the 5x5 digraph substitution cipher with J merged into I.
type Playfair struct{}

func NewPlayfair() *Playfair {
	return &Playfair{}
}

func (p *Playfair) Name() string { return "playfair" }

func (p *Playfair) Encrypt(plaintext string, key []byte) (string, error) {
	return PlayfairEncrypt(plaintext, string(key)), nil
}

func (p *Playfair) Decrypt(ciphertext string, key []byte) (string, error) {
	return PlayfairDecrypt(ciphertext, string(key))
}

// GenerateKey returns size random letters (10 by default).
func (p *Playfair) GenerateKey(size int) ([]byte, error) {
	if size <= 0 {
		size = 10
	}
	return randomLetters(size)
}

type playfairSquare struct {
	cells [25]byte
	pos   [26]int // letter -> cell index, -1 when absent
}

func newPlayfairSquare(key string) *playfairSquare {
	sq := &playfairSquare{}
	for i := range sq.pos {
		sq.pos[i] = -1
	}
	n := 0
	for _, ch := range normalizePlayfair(key) + playfairAlphabet {
		c := byte(ch)
		if sq.pos[c-'A'] >= 0 {
			continue
		}
		sq.cells[n] = c
		sq.pos[c-'A'] = n
		n++
	}
	return sq
}

func (sq *playfairSquare) at(row, col int) byte {
	return sq.cells[mod(row, 5)*5+mod(col, 5)]
}

func (sq *playfairSquare) locate(c byte) (int, int) {
	p := sq.pos[c-'A']
	return p / 5, p % 5
}

// transform applies the digraph rules; shift is +1 to encrypt, -1 to decrypt.
func (sq *playfairSquare) transform(a, b byte, shift int) (byte, byte) {
	ra, ca := sq.locate(a)
	rb, cb := sq.locate(b)
	switch {
	case ra == rb:
		return sq.at(ra, ca+shift), sq.at(rb, cb+shift)
	case ca == cb:
		return sq.at(ra+shift, ca), sq.at(rb+shift, cb)
	default:
		return sq.at(ra, cb), sq.at(rb, ca)
	}
}

// normalizePlayfair upper-cases text, merges J into I and drops everything
// that is not an ASCII letter.
func normalizePlayfair(text string) string {
	var sb strings.Builder
	for _, r := range strings.ToUpper(text) {
		if !isUpper(r) {
			continue
		}
		if r == 'J' {
			r = 'I'
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// playfairDigraphs splits text into pairs, breaking doubled letters and
// completing a trailing singleton with the filler.
func playfairDigraphs(text string) [][2]byte {
	var pairs [][2]byte
	for i := 0; i < len(text); {
		a := text[i]
		b := byte(playfairFiller)
		if i+1 < len(text) {
			b = text[i+1]
		}
		if a == b {
			pairs = append(pairs, [2]byte{a, playfairFiller})
			i++
			continue
		}
		pairs = append(pairs, [2]byte{a, b})
		i += 2
	}
	return pairs
}

// PlayfairEncrypt encrypts text under key.
func PlayfairEncrypt(text, key string) string {
	sq := newPlayfairSquare(key)
	pairs := playfairDigraphs(normalizePlayfair(text))
	out := make([]byte, 0, 2*len(pairs))
	for _, p := range pairs {
		a, b := sq.transform(p[0], p[1], 1)
		out = append(out, a, b)
	}
	return string(out)
}

// PlayfairDecrypt decrypts text under key. Filler letters are left in place.
func PlayfairDecrypt(text, key string) (string, error) {
	sq := newPlayfairSquare(key)
	clean := normalizePlayfair(text)
	if len(clean)%2 != 0 {
		return "", fmt.Errorf("%w: odd number of letters", ErrInvalidCiphertext)
	}
	out := make([]byte, 0, len(clean))
	for i := 0; i < len(clean); i += 2 {
		a, b := sq.transform(clean[i], clean[i+1], -1)
		out = append(out, a, b)
	}
	return string(out), nil
}
