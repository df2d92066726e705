package crypto

// PKCS7Pad appends n bytes of value n so that len(data) becomes a multiple of
// blockSize. A full block is added when data is already aligned.
func PKCS7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padding)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padding)
	}
	return padded
}

// PKCS7Unpad removes PKCS#7 padding. A padding byte that cannot be valid
// (zero, larger than the block or the data) leaves data untouched instead of
// failing.
func PKCS7Unpad(data []byte, blockSize int) []byte {
	if len(data) == 0 {
		return data
	}
	padding := int(data[len(data)-1])
	if padding == 0 || padding > blockSize || padding > len(data) {
		return data
	}
	return data[:len(data)-padding]
}
