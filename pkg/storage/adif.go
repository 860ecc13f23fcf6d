package storage

import (
	"regexp"
	"strconv"
	"strings"
)

// <name:length> or <name:length:type>
var reADIFField = regexp.MustCompile(`(?i)<([a-z0-9_]+):(\d+)(?::[a-z])?>`)

// ADIFFields returns the fields of one ADIF record keyed by lower-case name.
// Values are cut to their declared length.
func ADIFFields(record string) map[string]string {
	fields := make(map[string]string)
	for _, m := range reADIFField.FindAllStringSubmatchIndex(record, -1) {
		name := strings.ToLower(record[m[2]:m[3]])
		n, err := strconv.Atoi(record[m[4]:m[5]])
		if err != nil {
			continue
		}

		start := m[1]
		end := start + n
		if end > len(record) {
			end = len(record)
		}
		fields[name] = record[start:end]
	}
	return fields
}
