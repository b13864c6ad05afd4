// vault — аутентифицированное симметричное шифрование секретов,
// хранимых в БД (секретные API-ключи проектов, тела выпусков).
//
// Формат шифртекста: "hex(iv):hex(ciphertext||tag)" — AES-256-GCM
// с 16-байтовым случайным IV на каждый вызов. Ключ шифрования
// нормализуется через sha256 от сконфигурированного секрета, поэтому
// вызывающий код может передавать секрет произвольной длины.
//
// Смена стратегии нормализации ключа ломает расшифровку уже сохранённых
// данных, поэтому она зафиксирована раз и навсегда: digest-then-import.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const ivLength = 16

var (
	// ErrAuthentication — тег/шифртекст/ключ не сходятся: данные повреждены
	// или подменены. Повтор бессмысленен — и шифртекст, и ключ статичны.
	ErrAuthentication = errors.New("vault: authentication failed")

	// ErrMalformedPayload — вход не соответствует формату "iv:ciphertext".
	ErrMalformedPayload = errors.New("vault: malformed payload")
)

// Vault шифрует и расшифровывает строки одним ключом.
// Экземпляр безопасен для конкурентного использования.
type Vault struct {
	aead cipher.AEAD
}

// New создаёт Vault из секрета произвольной длины.
func New(secret string) (*Vault, error) {
	const op = "vault.New"

	if secret == "" {
		return nil, fmt.Errorf("%s: empty secret", op)
	}

	key := sha256.Sum256([]byte(secret))

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	aead, err := cipher.NewGCMWithNonceSize(block, ivLength)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Vault{aead: aead}, nil
}

// Encrypt шифрует plaintext и возвращает "hex(iv):hex(ciphertext||tag)".
// IV свежий на каждый вызов и никогда не переиспользуется.
func (v *Vault) Encrypt(plaintext string) (string, error) {
	const op = "vault.Encrypt"

	iv := make([]byte, ivLength)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	sealed := v.aead.Seal(nil, iv, []byte(plaintext), nil)

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(sealed), nil
}

// Decrypt расшифровывает payload формата Encrypt.
// Любое несоответствие тега/шифртекста/ключа — ErrAuthentication;
// испорченный открытый текст не возвращается никогда.
func (v *Vault) Decrypt(payload string) (string, error) {
	const op = "vault.Decrypt"

	ivHex, ctHex, ok := strings.Cut(payload, ":")
	if !ok || ivHex == "" || ctHex == "" {
		return "", fmt.Errorf("%s: %w", op, ErrMalformedPayload)
	}

	iv, err := hex.DecodeString(ivHex)
	if err != nil || len(iv) != ivLength {
		return "", fmt.Errorf("%s: %w", op, ErrMalformedPayload)
	}

	sealed, err := hex.DecodeString(ctHex)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrMalformedPayload)
	}

	plain, err := v.aead.Open(nil, iv, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrAuthentication)
	}

	return string(plain), nil
}
