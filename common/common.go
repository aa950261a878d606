package common

import (
	"fmt"
	"strings"

	uuid "github.com/nu7hatch/gouuid"
)

// GenUUID returns a random uuid string.
// uuid.NewV4 only fails if crypto/rand does; after a few tries we give up
// on uniqueness and fall back to an address.
func GenUUID() string {
	for i := 0; i < 3; i++ {
		if id, err := uuid.NewV4(); err == nil {
			return id.String()
		}
	}
	return fmt.Sprintf("%p", new(byte))
}

// Splits a comma separated string consisting of key value pairs,
// e.g. "k1=v1,k2=v2", into a map. Malformed pairs are skipped and
// whitespace around keys and values is dropped.
func SplitCommaSepToMap(commaSepString string) map[string]string {
	m := make(map[string]string)
	for _, pair := range strings.Split(commaSepString, ",") {
		if strings.TrimSpace(pair) == "" {
			continue
		}
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 || strings.TrimSpace(kv[0]) == "" {
			continue
		}
		m[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
	}
	return m
}
