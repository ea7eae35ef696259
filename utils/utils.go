package utils

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/datazip-inc/olake-ticketmatic/constants"
	"github.com/goccy/go-json"
	"github.com/mitchellh/hashstructure"
	"github.com/oklog/ulid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"sigs.k8s.io/yaml"
)

var (
	ulidMutex = sync.Mutex{}
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// Ternary works as a ternary operator; callers type assert the result
func Ternary(cond bool, a, b any) any {
	if cond {
		return a
	}

	return b
}

// ArrayContains returns the index of the first element matching match
func ArrayContains[T any](set []T, match func(elem T) bool) (int, bool) {
	for idx, elem := range set {
		if match(elem) {
			return idx, true
		}
	}

	return -1, false
}

func IsValidSubcommand(available []*cobra.Command, sub string) bool {
	for _, s := range available {
		if sub == s.CalledAs() || sub == s.Name() || s.HasAlias(sub) {
			return true
		}
	}
	return false
}

func ExistInArray[T ~string | int | int8 | int16 | int32 | int64 | float32 | float64](set []T, value T) bool {
	_, found := ArrayContains(set, func(elem T) bool {
		return elem == value
	})

	return found
}

// Unmarshal serializes and deserializes any from into the object
func Unmarshal(from, object any) error {
	reformatted := reformatInnerMaps(from)
	b, err := json.Marshal(reformatted)
	if err != nil {
		return fmt.Errorf("error marshaling object: %s", err)
	}
	err = json.Unmarshal(b, object)
	if err != nil {
		return fmt.Errorf("error unmarshalling from object: %s", err)
	}

	return nil
}

// UnmarshalFile reads a JSON or YAML file into dest; when decrypt is set the file
// content is treated as an encrypted config
func UnmarshalFile(file string, dest any, decrypt bool) error {
	if err := CheckIfFilesExists(file); err != nil {
		return err
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("file not found : %s", err)
	}

	if decrypt && strings.TrimSpace(viper.GetString(constants.EncryptionKey)) != "" {
		decrypted, err := DecryptConfig(string(data))
		if err != nil {
			return fmt.Errorf("failed to decrypt config: %s", err)
		}
		data = []byte(decrypted)
	}

	ext := strings.ToLower(filepath.Ext(file))
	if ext == ".yaml" || ext == ".yml" {
		data, err = yaml.YAMLToJSON(data)
		if err != nil {
			return fmt.Errorf("failed to convert yaml file[%s]: %s", file, err)
		}
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal file[%s]: %s", file, err)
	}

	return nil
}

func CheckIfFilesExists(files ...string) error {
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			return fmt.Errorf("%s does not exist: %s", file, err)
		}
	}

	return nil
}

// reformatInnerMaps converts map[interface{}]interface{} produced by yaml decoders
func reformatInnerMaps(valueMap any) any {
	switch v := valueMap.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]any)
		for key, value := range v {
			out[fmt.Sprintf("%v", key)] = reformatInnerMaps(value)
		}
		return out
	case map[string]any:
		for key, value := range v {
			v[key] = reformatInnerMaps(value)
		}
		return v
	case []any:
		for i, value := range v {
			v[i] = reformatInnerMaps(value)
		}
		return v
	default:
		return v
	}
}

// GetKeysHash returns a stable hash of the primary key values of a record;
// records without primary keys are hashed whole
func GetKeysHash(m map[string]interface{}, keys ...string) string {
	if len(keys) == 0 {
		return GetHash(m)
	}

	values := make([]string, 0, len(keys))
	for _, key := range keys {
		values = append(values, fmt.Sprintf("%v", m[key]))
	}

	return GetHash(strings.Join(values, "||"))
}

func GetHash(v any) string {
	hash, err := hashstructure.Hash(v, nil)
	if err != nil {
		// maps with unhashable values fall back to their json form
		b, _ := json.Marshal(v)
		hash, _ = hashstructure.Hash(string(b), nil)
	}

	return fmt.Sprintf("%x", hash)
}

func ULID() string {
	return genULID(time.Now())
}

func genULID(t time.Time) string {
	ulidMutex.Lock()
	defer ulidMutex.Unlock()
	newUlid, err := ulid.New(ulid.Timestamp(t), entropy)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ulid: %s", err))
	}

	return newUlid.String()
}

// TimestampedFileName returns a unique, time ordered file name with the given extension
func TimestampedFileName(extension string) string {
	now := time.Now().UTC()
	ulid := genULID(now)
	return fmt.Sprintf("%d-%d-%d_%d-%d-%d_%s.%s", now.Year(), now.Month(), now.Day(), now.Hour(), now.Minute(), now.Second(), ulid, extension)
}

