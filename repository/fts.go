package repository

import "strings"

// sanitizeFTSQuery turns free text into an FTS5 query: each word becomes a
// quoted prefix term, and quotes and '*' in the input are dropped so user
// text can never inject FTS operators. Returns "" when nothing is left.
func sanitizeFTSQuery(query string) string {
	words := strings.Fields(query)
	if len(words) == 0 {
		return ""
	}

	var safe []string
	for _, w := range words {
		cleaned := strings.ReplaceAll(w, "\"", "")
		cleaned = strings.ReplaceAll(cleaned, "*", "")
		if cleaned == "" {
			continue
		}
		safe = append(safe, "\""+cleaned+"\"*")
	}

	return strings.Join(safe, " ")
}

// escapeLike escapes LIKE wildcards; pair it with ESCAPE '\'.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
