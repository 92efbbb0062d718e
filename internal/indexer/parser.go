package indexer

import "strings"

// ParseLine splits one record into fields using comma and double-quote rules.
//
// A quote toggles quoted mode, except that a doubled quote inside quoted mode
// yields one literal quote. Commas outside quoted mode end a field. The last
// field is always emitted, so a line without commas yields exactly one field.
// Embedded newlines are not handled here: lines are split upstream.
func ParseLine(line string) []string {
	fields := make([]string, 0, 8)
	var field strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				field.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case c == ',' && !inQuotes:
			fields = append(fields, field.String())
			field.Reset()
		default:
			field.WriteByte(c)
		}
	}

	return append(fields, field.String())
}

// SplitRaw splits a record exactly like ParseLine but returns every field's
// raw text, quotes included and doubled quotes left as they are.
func SplitRaw(line string) []string {
	fields := make([]string, 0, 8)
	start := 0
	inQuotes := false

	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				i++
			} else {
				inQuotes = !inQuotes
			}
		case ',':
			if !inQuotes {
				fields = append(fields, line[start:i])
				start = i + 1
			}
		}
	}

	return append(fields, line[start:])
}
