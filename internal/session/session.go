package session

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Session represents the client-local record of whether a user is authenticated and who they are
type Session struct {
	AccessToken  string
	RefreshToken string
	User         UserRecord
	Active       bool
}

// UserRecord represents the opaque user structure returned by the backend.
// It is passed through as-is; numbers are kept as json.Number so no precision is lost on the way back to storage.
type UserRecord map[string]any

// ID returns the string representation of the record's 'id' field or an empty string if it is missing
func (record UserRecord) ID() string {
	switch id := record["id"].(type) {
	case json.Number:
		return id.String()
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case int:
		return strconv.Itoa(id)
	case int64:
		return strconv.FormatInt(id, 10)
	default:
		return ""
	}
}

// Username returns the record's 'username' field or an empty string if it is missing
func (record UserRecord) Username() string {
	username, _ := record["username"].(string)
	return username
}

// Clone returns a shallow copy of the record
func (record UserRecord) Clone() UserRecord {
	if record == nil {
		return nil
	}
	cpy := make(UserRecord, len(record))
	for key, val := range record {
		cpy[key] = val
	}
	return cpy
}

// merge returns a copy of the record overlaid with the given fields
func (record UserRecord) merge(fields map[string]any, skip ...string) UserRecord {
	merged := record.Clone()
	if merged == nil {
		merged = make(UserRecord, len(fields))
	}
	for key, val := range fields {
		merged[key] = val
	}
	for _, key := range skip {
		delete(merged, key)
	}
	return merged
}

func decodeUserRecord(raw string) (UserRecord, error) {
	decoder := json.NewDecoder(bytes.NewBufferString(raw))
	decoder.UseNumber()
	var record UserRecord
	if err := decoder.Decode(&record); err != nil {
		return nil, err
	}
	return record, nil
}
