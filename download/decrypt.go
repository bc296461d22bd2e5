package download

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"fmt"
)

// Decrypt transforms an encrypted full-track payload into plaintext audio
// using the license handed out by the download endpoint. The payload leads
// with the counter block; the key is derived from the license string. Pure:
// the same payload and license always produce the same plaintext.
func Decrypt(payload []byte, license string) ([]byte, error) {
	if len(payload) < aes.BlockSize {
		return nil, fmt.Errorf("payload too short: %d bytes", len(payload))
	}
	if license == "" {
		return nil, fmt.Errorf("empty license")
	}

	key := sha256.Sum256([]byte(license))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}

	iv, ciphertext := payload[:aes.BlockSize], payload[aes.BlockSize:]
	plaintext := make([]byte, len(ciphertext))
	cipher.NewCTR(block, iv).XORKeyStream(plaintext, ciphertext)
	return plaintext, nil
}
