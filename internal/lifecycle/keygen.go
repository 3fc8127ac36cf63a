package lifecycle

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultKeyPrefix = "EF-26Q1-"
	keySuffixLength  = 7
	keyAlphabet      = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var alphabetSize = big.NewInt(int64(len(keyAlphabet)))

func checkPrefix(prefix string) error {
	if prefix != NormalizeKey(prefix) || strings.ContainsAny(prefix, " \t\r\n") {
		return fmt.Errorf("%w: prefix %q", ErrInvalidKey, prefix)
	}
	return nil
}

// GenerateKey appends a random suffix to prefix. The prefix must already be
// in normalized form so generated keys match the allow-list verbatim.
func GenerateKey(prefix string) (string, error) {
	if err := checkPrefix(prefix); err != nil {
		return "", err
	}
	buf := make([]byte, keySuffixLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", err
		}
		buf[i] = keyAlphabet[n.Int64()]
	}
	return prefix + string(buf), nil
}

// GenerateKeys returns count distinct keys.
func GenerateKeys(prefix string, count int) ([]string, error) {
	if count <= 0 {
		return nil, errors.New("count must be positive")
	}
	if err := checkPrefix(prefix); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, count)
	keys := make([]string, 0, count)
	for len(keys) < count {
		key, err := GenerateKey(prefix)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys, nil
}

type secretsDocument struct {
	AccessKeys struct {
		Keys []string `toml:"keys"`
	} `toml:"access_keys"`
}

// EncodeSecretsTOML renders keys as an [access_keys] secrets block.
func EncodeSecretsTOML(keys []string) ([]byte, error) {
	var doc secretsDocument
	doc.AccessKeys.Keys = keys
	return toml.Marshal(doc)
}

// EncodeKeysFile renders keys in the format read by FileKeySource.
func EncodeKeysFile(keys []string) ([]byte, error) {
	return json.MarshalIndent(map[string][]string{"keys": keys}, "", "  ")
}
