package crypto

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// ColumnarFiller pads the last grid row. Decrypt strips trailing fillers, so a
// plaintext that really ends in this character loses it.
const ColumnarFiller = 'X'

// Columnar is the keyed columnar transposition cipher.
type Columnar struct{}

func NewColumnar() *Columnar {
	return &Columnar{}
}

func (c *Columnar) Name() string { return "columnar" }

func (c *Columnar) Encrypt(plaintext string, key []byte) (string, error) {
	return ColumnarEncrypt(plaintext, string(key))
}

func (c *Columnar) Decrypt(ciphertext string, key []byte) (string, error) {
	return ColumnarDecrypt(ciphertext, string(key))
}

// GenerateKey returns size random letters (8 by default).
func (c *Columnar) GenerateKey(size int) ([]byte, error) {
	if size <= 0 {
		size = 8
	}
	return randomLetters(size)
}

// columnOrder returns column indexes sorted by key character, ties kept in
// key order.
func columnOrder(key []rune) []int {
	order := make([]int, len(key))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return key[order[a]] < key[order[b]]
	})
	return order
}

// ColumnarEncrypt strips whitespace from text, writes it row by row under the
// key and reads the columns in sorted key order.
func ColumnarEncrypt(text, key string) (string, error) {
	k := []rune(key)
	if len(k) == 0 {
		return "", fmt.Errorf("%w: columnar", ErrMissingKey)
	}
	clean := []rune(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text))

	cols := len(k)
	rows := (len(clean) + cols - 1) / cols
	grid := make([]rune, rows*cols)
	for i := range grid {
		if i < len(clean) {
			grid[i] = clean[i]
		} else {
			grid[i] = ColumnarFiller
		}
	}

	out := make([]rune, 0, len(grid))
	for _, c := range columnOrder(k) {
		for r := 0; r < rows; r++ {
			out = append(out, grid[r*cols+c])
		}
	}
	return string(out), nil
}

// ColumnarDecrypt inverts ColumnarEncrypt and removes trailing filler.
func ColumnarDecrypt(text, key string) (string, error) {
	k := []rune(key)
	if len(k) == 0 {
		return "", fmt.Errorf("%w: columnar", ErrMissingKey)
	}
	src := []rune(text)
	cols := len(k)
	if len(src)%cols != 0 {
		return "", fmt.Errorf("%w: length %d is not a multiple of %d columns", ErrInvalidCiphertext, len(src), cols)
	}

	rows := len(src) / cols
	grid := make([]rune, len(src))
	idx := 0
	for _, c := range columnOrder(k) {
		for r := 0; r < rows; r++ {
			grid[r*cols+c] = src[idx]
			idx++
		}
	}
	return strings.TrimRight(string(grid), string(ColumnarFiller)), nil
}
