package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Key derives a deterministic cache key from an operation name and its
// input parts. Parts are sorted by name before hashing so two
// logically identical requests hash the same regardless of the order
// optional parameters were supplied in.
func Key(op string, parts map[string]any) string {
	names := make([]string, 0, len(parts))
	for name := range parts {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(op)
	for _, name := range names {
		b.WriteByte('|')
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(canonical(parts[name]))
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// canonical renders a part value in a fixed format. Floats get a fixed
// precision so that equal coordinates always serialize identically.
func canonical(v any) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'f', 8, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', 8, 64)
	case string:
		return x
	case []string:
		return strings.Join(x, ",")
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprintf("%v", x)
	}
}
