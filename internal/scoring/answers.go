package scoring

import "encoding/json"

// AnswerMap is the session's flat answer store, keyed by composite
// sub-question keys. It is sparse: an absent key means unanswered, never an
// error. Values are loosely typed: strings, bools, numbers, or nested
// objects straight out of json.Unmarshal.
type AnswerMap map[string]any

// DecodeAnswerMap unmarshals a stored jsonb answer blob. Nil or empty input
// yields an empty, usable map.
func DecodeAnswerMap(raw []byte) (AnswerMap, error) {
	m := AnswerMap{}
	if len(raw) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// Merge folds src into dst key-by-key and returns dst. When both sides of a
// key hold JSON objects the fields merge individually; otherwise the src
// value wins for that key only. Sync deltas arrive out of order during a
// session, so a late partial update must never erase answers for other
// sub-questions.
func Merge(dst, src AnswerMap) AnswerMap {
	if dst == nil {
		dst = AnswerMap{}
	}
	for key, incoming := range src {
		existing, ok := dst[key]
		if !ok {
			dst[key] = incoming
			continue
		}
		existingObj, eok := existing.(map[string]any)
		incomingObj, iok := incoming.(map[string]any)
		if eok && iok {
			for f, v := range incomingObj {
				existingObj[f] = v
			}
			continue
		}
		dst[key] = incoming
	}
	return dst
}

// IsSelected reports whether a stored choice value means "this option was
// picked". Clients send true, "true", or echo the option label itself.
func IsSelected(value any, label string) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		if v == "true" {
			return true
		}
		return Normalize(v) == Normalize(label) && Normalize(label) != ""
	default:
		return false
	}
}
