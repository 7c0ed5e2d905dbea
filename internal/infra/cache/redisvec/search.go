package redisvec

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mark47B/opspilot/internal/domain/entity"
	"github.com/mark47B/opspilot/internal/domain/fingerprint"
)

func createIndexArgs(index string, dims int) []interface{} {
	return []interface{}{
		"FT.CREATE", index,
		"ON", "HASH",
		"PREFIX", 1, DocPrefix,
		"SCHEMA",
		"repo", "TAG",
		"team", "TAG",
		"score", "NUMERIC", "SORTABLE",
		"sop", "TEXT",
		"embedding", "VECTOR", "HNSW", 6,
		"TYPE", "FLOAT32",
		"DIM", dims,
		"DISTANCE_METRIC", "COSINE",
	}
}

func searchArgs(index string, vector []float32, k int) []interface{} {
	return []interface{}{
		"FT.SEARCH", index,
		fmt.Sprintf("*=>[KNN %d @embedding $B AS distance]", k),
		"PARAMS", 2, "B", fingerprint.Bytes(vector),
		"SORTBY", "distance",
		"RETURN", 2, "payload", "distance",
		"LIMIT", 0, k,
		"DIALECT", 2,
	}
}

type searchDoc struct {
	key        string
	similarity float64
	payload    *entity.CachedAnalysis
	decodeErr  error
}

// parseSearchReply decodes a RESP2 FT.SEARCH reply:
// [total, key1, [field, value, ...], key2, [...], ...]. Cosine distance is
// converted to similarity as 1 - distance, floored at 0.
func parseSearchReply(reply interface{}) ([]searchDoc, error) {
	items, ok := reply.([]interface{})
	if !ok || len(items) == 0 {
		return nil, fmt.Errorf("unexpected search reply %T", reply)
	}

	var docs []searchDoc
	for i := 1; i+1 < len(items); i += 2 {
		key, _ := items[i].(string)
		fields, ok := items[i+1].([]interface{})
		if !ok {
			return nil, fmt.Errorf("unexpected fields for %q: %T", key, items[i+1])
		}

		doc := searchDoc{key: key}
		for j := 0; j+1 < len(fields); j += 2 {
			name, _ := fields[j].(string)
			value := toString(fields[j+1])
			switch name {
			case "distance":
				d, err := strconv.ParseFloat(value, 64)
				if err != nil {
					return nil, fmt.Errorf("parse distance %q: %w", value, err)
				}
				doc.similarity = 1 - d
				if doc.similarity < 0 {
					doc.similarity = 0
				}
			case "payload":
				var p entity.CachedAnalysis
				if err := json.Unmarshal([]byte(value), &p); err != nil {
					doc.decodeErr = err
					continue
				}
				doc.payload = &p
			}
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}
