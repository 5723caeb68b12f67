package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"hazboun-backend/domain/core/entities"
	"hazboun-backend/pkg/errors"
)

// EncodeDirectory renders members as the export file: a pretty-printed JSON
// array with two-space indentation. An empty directory encodes as [].
func EncodeDirectory(members []entities.FamilyMember) ([]byte, error) {
	out := make([]entities.FamilyMember, 0, len(members))
	for _, m := range members {
		out = append(out, m.Normalize())
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode directory: %w", err)
	}
	return data, nil
}

// DecodeDirectory parses an uploaded directory file. Input that is not JSON
// is a read error and a top-level value other than an array is a format
// error. Elements are taken as they come: ids and parents may be numbers,
// generation and birthYear may be numeric strings, and an element that is
// not an object becomes an empty record.
func DecodeDirectory(data []byte) ([]entities.FamilyMember, error) {
	trimmed := bytes.TrimSpace(data)
	if !json.Valid(trimmed) {
		return nil, errors.NewImportReadError(fmt.Errorf("file is not valid JSON"))
	}
	if trimmed[0] != '[' {
		return nil, errors.NewImportFormatError(fmt.Errorf("top-level value is not an array"))
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, errors.NewImportFormatError(err)
	}

	members := make([]entities.FamilyMember, 0, len(raw))
	for _, r := range raw {
		members = append(members, decodeRecord(r))
	}
	return members, nil
}

func decodeRecord(raw json.RawMessage) entities.FamilyMember {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var fields map[string]interface{}
	if err := dec.Decode(&fields); err != nil || fields == nil {
		return entities.FamilyMember{}
	}

	m := entities.FamilyMember{
		ID:         text(fields["id"]),
		Name:       text(fields["name"]),
		Location:   text(fields["location"]),
		Country:    text(fields["country"]),
		Email:      text(fields["email"]),
		Phone:      text(fields["phone"]),
		Profession: text(fields["profession"]),
		Branch:     text(fields["branch"]),
		Bio:        text(fields["bio"]),
		Parents:    textList(fields["parents"]),
	}
	if n, ok := integer(fields["generation"]); ok {
		m.Generation = n
	}
	if n, ok := integer(fields["birthYear"]); ok {
		m.BirthYear = &n
	}
	return m.Normalize()
}

func text(v interface{}) string {
	switch v := v.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

func textList(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		if s := text(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func integer(v interface{}) (int, bool) {
	var s string
	switch v := v.(type) {
	case json.Number:
		s = v.String()
	case string:
		s = strings.TrimSpace(v)
	default:
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}
