package crypto

import (
	"strings"
)

// pigpenCodes maps letters to their grid symbol codes. I and J share B3.
var pigpenCodes = map[rune]string{
	'A': "A1", 'B': "A2", 'C': "A3", 'D': "A4", 'E': "A5", 'F': "A6",
	'G': "B1", 'H': "B2", 'I': "B3", 'J': "B3", 'K': "B4", 'L': "B5", 'M': "B6",
	'N': "C1", 'O': "C2", 'P': "C3", 'Q': "C4", 'R': "C5", 'S': "C6",
	'T': "D1", 'U': "D2", 'V': "D3", 'W': "D4", 'X': "D5", 'Y': "D6", 'Z': "E1",
}

var pigpenLetters = func() map[string]rune {
	rev := make(map[string]rune, len(pigpenCodes))
	for letter, code := range pigpenCodes {
		if letter == 'J' {
			continue
		}
		rev[code] = letter
	}
	return rev
}()

// Pigpen is a fixed substitution; the key is ignored.
type Pigpen struct{}

func NewPigpen() *Pigpen {
	return &Pigpen{}
}

func (p *Pigpen) Name() string { return "pigpen" }

func (p *Pigpen) Encrypt(plaintext string, _ []byte) (string, error) {
	return PigpenEncrypt(plaintext), nil
}

func (p *Pigpen) Decrypt(ciphertext string, _ []byte) (string, error) {
	return PigpenDecrypt(ciphertext), nil
}

func (p *Pigpen) GenerateKey(int) ([]byte, error) {
	return []byte{}, nil
}

// PigpenEncrypt encodes the letters of text, dropping anything else, as
// space separated codes.
func PigpenEncrypt(text string) string {
	codes := make([]string, 0, len(text))
	for _, r := range strings.ToUpper(text) {
		if code, ok := pigpenCodes[r]; ok {
			codes = append(codes, code)
		}
	}
	return strings.Join(codes, " ")
}

// PigpenDecrypt maps each whitespace separated code back to its letter.
// Unknown codes decode to nothing.
func PigpenDecrypt(text string) string {
	var sb strings.Builder
	for _, tok := range strings.Fields(text) {
		if r, ok := pigpenLetters[tok]; ok {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
