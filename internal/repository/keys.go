package repository

import "bytes"

// Key layout, one record per key, namespaced under an owner-scoped prefix:
//
//	user_data/<owner>/projects/<id>    -> domain.Project
//	user_data/<owner>/timeEntries/<id> -> domain.TimeEntry
//	user_data/<owner>/activeSession    -> domain.ActiveSession
//
// Segments are joined with a 0x00 separator so no owner id can collide with
// another owner's prefix; scan prefixes are always separator-terminated.
const keySep = byte(0x00)

func key(segments ...string) []byte {
	var b bytes.Buffer
	for i, s := range segments {
		if i > 0 {
			b.WriteByte(keySep)
		}
		b.WriteString(s)
	}
	return b.Bytes()
}

// scanPrefix returns the separator-terminated prefix covering every key
// under the given segments and nothing else.
func scanPrefix(segments ...string) []byte {
	return append(key(segments...), keySep)
}

func projectKey(owner, id string) []byte {
	return key("user_data", owner, "projects", id)
}

func projectsPrefix(owner string) []byte {
	return scanPrefix("user_data", owner, "projects")
}

func entryKey(owner, id string) []byte {
	return key("user_data", owner, "timeEntries", id)
}

func entriesPrefix(owner string) []byte {
	return scanPrefix("user_data", owner, "timeEntries")
}

func activeSessionKey(owner string) []byte {
	return key("user_data", owner, "activeSession")
}
