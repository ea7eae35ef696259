package utils

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/datazip-inc/olake-ticketmatic/constants"
	"github.com/goccy/go-json"
	"github.com/spf13/viper"
)

const kmsKeyPrefix = "arn:aws:kms:"

// keyring resolves the configured encryption key; either an AWS KMS key ARN
// or a passphrase from which an AES-256 key is derived
type keyring struct {
	kmsClient *kms.Client
	kmsKeyID  string
	localKey  []byte
}

func loadKeyring(ctx context.Context) (*keyring, error) {
	key := strings.TrimSpace(viper.GetString(constants.EncryptionKey))
	if key == "" {
		return nil, nil
	}

	if strings.HasPrefix(key, kmsKeyPrefix) {
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return &keyring{kmsClient: kms.NewFromConfig(cfg), kmsKeyID: key}, nil
	}

	hash := sha256.Sum256([]byte(key))
	return &keyring{localKey: hash[:]}, nil
}

func (k *keyring) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(k.localKey)
	if err != nil {
		return nil, err
	}

	return cipher.NewGCM(block)
}

func (k *keyring) decrypt(ctx context.Context, cipherData []byte) ([]byte, error) {
	if k.kmsClient != nil {
		out, err := k.kmsClient.Decrypt(ctx, &kms.DecryptInput{
			CiphertextBlob: cipherData,
			KeyId:          &k.kmsKeyID,
		})
		if err != nil {
			return nil, err
		}
		return out.Plaintext, nil
	}

	aead, err := k.gcm()
	if err != nil {
		return nil, err
	}

	nonceSize := aead.NonceSize()
	if len(cipherData) < nonceSize {
		return nil, errors.New("ciphertext too short")
	}

	nonce, ciphertext := cipherData[:nonceSize], cipherData[nonceSize:]
	return aead.Open(nil, nonce, ciphertext, nil)
}

func (k *keyring) encrypt(ctx context.Context, plain []byte) ([]byte, error) {
	if k.kmsClient != nil {
		out, err := k.kmsClient.Encrypt(ctx, &kms.EncryptInput{
			KeyId:     &k.kmsKeyID,
			Plaintext: plain,
		})
		if err != nil {
			return nil, err
		}
		return out.CiphertextBlob, nil
	}

	aead, err := k.gcm()
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return aead.Seal(nonce, nonce, plain, nil), nil
}

// DecryptConfig decrypts a base64 (url encoding) config payload. The payload
// may be wrapped in a JSON string. Without an encryption key it is returned as is.
func DecryptConfig(encryptedConfig string) (string, error) {
	ring, err := loadKeyring(context.Background())
	if err != nil {
		return "", fmt.Errorf("decryption failed: %w", err)
	}
	if ring == nil {
		return encryptedConfig, nil
	}

	var unquoted string
	if err := json.Unmarshal([]byte(strings.TrimSpace(encryptedConfig)), &unquoted); err != nil {
		unquoted = strings.TrimSpace(encryptedConfig)
	}

	encryptedData, err := base64.URLEncoding.DecodeString(unquoted)
	if err != nil {
		return "", fmt.Errorf("failed to decode base64 data: %s", err)
	}

	decrypted, err := ring.decrypt(context.Background(), encryptedData)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt data: %s", err)
	}

	return string(decrypted), nil
}

// EncryptConfig is the inverse of DecryptConfig
func EncryptConfig(plainConfig string) (string, error) {
	ring, err := loadKeyring(context.Background())
	if err != nil {
		return "", fmt.Errorf("encryption failed: %w", err)
	}
	if ring == nil {
		return plainConfig, nil
	}

	encrypted, err := ring.encrypt(context.Background(), []byte(plainConfig))
	if err != nil {
		return "", fmt.Errorf("failed to encrypt data: %s", err)
	}

	return base64.URLEncoding.EncodeToString(encrypted), nil
}
