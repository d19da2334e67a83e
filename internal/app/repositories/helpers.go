package repositories

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern builds a substring pattern for ILIKE, escaping wildcards in q.
func likePattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
