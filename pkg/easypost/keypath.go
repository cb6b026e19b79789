package easypost

import (
	"encoding/json"
	"strings"

	"github.com/itchyny/gojq"
)

// errorEnvelopePath is where EasyPost nests error details in a failure body.
var errorEnvelopePath = []string{"error"}

// lookupPath walks keys through a JSON document and returns the value found
// at the end. Invalid JSON, a missing key, a null value or a non-object
// intermediate all report false.
func lookupPath(data []byte, keys ...string) (any, bool) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, false
	}

	query, err := gojq.Parse(pathExpression(keys))
	if err != nil {
		return nil, false
	}

	iter := query.Run(doc)
	v, ok := iter.Next()
	if !ok || v == nil {
		return nil, false
	}
	if _, isErr := v.(error); isErr {
		return nil, false
	}
	return v, true
}

// pathExpression renders keys as a jq path, e.g. .["error"]["errors"].
// Keys are emitted as JSON string literals so any key text is safe.
func pathExpression(keys []string) string {
	var b strings.Builder
	b.WriteString(".")
	for _, key := range keys {
		quoted, _ := json.Marshal(key)
		b.WriteString("[")
		b.Write(quoted)
		b.WriteString("]")
	}
	return b.String()
}
