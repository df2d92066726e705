package crypto

// DefaultRails is used when the key is empty.
const DefaultRails = 3

// RailFence is the zig-zag transposition cipher. The number of rails is
// max(2, key[0] mod 10).
type RailFence struct{}

func NewRailFence() *RailFence {
	return &RailFence{}
}

func (rf *RailFence) Name() string { return "railfence" }

func (rf *RailFence) Encrypt(plaintext string, key []byte) (string, error) {
	return RailFenceEncrypt(plaintext, railsFromKey(key)), nil
}

func (rf *RailFence) Decrypt(ciphertext string, key []byte) (string, error) {
	return RailFenceDecrypt(ciphertext, railsFromKey(key)), nil
}

// GenerateKey returns one byte selecting between 2 and 9 rails.
func (rf *RailFence) GenerateKey(int) ([]byte, error) {
	rails, err := randomInt(2, 9)
	if err != nil {
		return nil, err
	}
	return []byte{byte(rails)}, nil
}

func railsFromKey(key []byte) int {
	if len(key) == 0 {
		return DefaultRails
	}
	return max(2, int(key[0])%10)
}

// zigzag returns, for each rail, the text positions written on it.
func zigzag(n, rails int) [][]int {
	fence := make([][]int, rails)
	rail, dir := 0, 1
	for i := 0; i < n; i++ {
		fence[rail] = append(fence[rail], i)
		rail += dir
		if rail == 0 || rail == rails-1 {
			dir = -dir
		}
	}
	return fence
}

// RailFenceEncrypt writes text along the zig-zag and reads the rails in order.
func RailFenceEncrypt(text string, rails int) string {
	rails = max(2, rails)
	src := []rune(text)
	out := make([]rune, 0, len(src))
	for _, row := range zigzag(len(src), rails) {
		for _, pos := range row {
			out = append(out, src[pos])
		}
	}
	return string(out)
}

// RailFenceDecrypt scatters the ciphertext back onto the zig-zag pattern.
func RailFenceDecrypt(text string, rails int) string {
	rails = max(2, rails)
	src := []rune(text)
	out := make([]rune, len(src))
	idx := 0
	for _, row := range zigzag(len(src), rails) {
		for _, pos := range row {
			out[pos] = src[idx]
			idx++
		}
	}
	return string(out)
}
