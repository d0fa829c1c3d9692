package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

// 加密值前缀，区分明文旧数据
const piiPrefix = "enc:"

var ErrPIIDecrypt = errors.New("PII 解密失败")

// piiKey 由配置密钥派生 32 字节 AES 密钥
func piiKey(secret string) []byte {
	sum := sha256.Sum256([]byte(secret))
	return sum[:]
}

// EncryptPII 加密敏感字段（AES-GCM），输出 enc:<base64(nonce|ciphertext)>
// 空值原样返回
func EncryptPII(plaintext, secret string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	block, err := aes.NewCipher(piiKey(secret))
	if err != nil {
		return "", fmt.Errorf("初始化加密器失败: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("初始化 GCM 失败: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("生成随机数失败: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return piiPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptPII 解密敏感字段
// 未带加密前缀的值视为历史明文，原样返回
func DecryptPII(value, secret string) (string, error) {
	if !strings.HasPrefix(value, piiPrefix) {
		return value, nil
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, piiPrefix))
	if err != nil {
		return "", ErrPIIDecrypt
	}

	block, err := aes.NewCipher(piiKey(secret))
	if err != nil {
		return "", ErrPIIDecrypt
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", ErrPIIDecrypt
	}

	if len(raw) < gcm.NonceSize() {
		return "", ErrPIIDecrypt
	}

	plaintext, err := gcm.Open(nil, raw[:gcm.NonceSize()], raw[gcm.NonceSize():], nil)
	if err != nil {
		return "", ErrPIIDecrypt
	}
	return string(plaintext), nil
}
