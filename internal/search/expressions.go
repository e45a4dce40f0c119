package search

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/grocerease/grocerease-backend/internal/repo"
)

const (
	searchDocument = `to_tsvector('english', item_name || ' ' || store_name)`
	likeEscape     = ` ESCAPE '\'`
)

// substringMatch is a case-insensitive LIKE over item and store names.
type substringMatch struct {
	Term string
}

func (m substringMatch) Build(b clause.Builder) {
	pattern := repo.ContainsPattern(m.Term)
	b.WriteString("(LOWER(item_name) LIKE ")
	b.AddVar(b, pattern)
	b.WriteString(likeEscape)
	b.WriteString(" OR LOWER(store_name) LIKE ")
	b.AddVar(b, pattern)
	b.WriteString(likeEscape)
	b.WriteString(")")
}

// textMatch is a full-text match on Postgres. Other dialects get a
// per-word substring match so the same queries run against sqlite.
type textMatch struct {
	Query string
}

func (m textMatch) Build(b clause.Builder) {
	if isPostgres(b) {
		b.WriteString(searchDocument + " @@ plainto_tsquery('english', ")
		b.AddVar(b, m.Query)
		b.WriteString(")")
		return
	}

	words := strings.Fields(m.Query)
	b.WriteString("(")
	for i, word := range words {
		if i > 0 {
			b.WriteString(" AND ")
		}
		substringMatch{Term: stem(word)}.Build(b)
	}
	b.WriteString(")")
}

// rankOrder sorts by full-text rank, newest first among equal ranks.
type rankOrder struct {
	Query string
}

func (r rankOrder) Build(b clause.Builder) {
	if isPostgres(b) {
		b.WriteString("ts_rank(" + searchDocument + ", plainto_tsquery('english', ")
		b.AddVar(b, r.Query)
		b.WriteString(")) DESC, ")
	}
	b.WriteString("created_at DESC, id")
}

func isPostgres(b clause.Builder) bool {
	stmt, ok := b.(*gorm.Statement)
	return ok && stmt.Dialector != nil && stmt.Dialector.Name() == "postgres"
}

// stem drops a plural suffix so "apples" still finds "apple" without a text index.
func stem(word string) string {
	lower := strings.ToLower(word)
	if len(lower) > 3 && strings.HasSuffix(lower, "s") && !strings.HasSuffix(lower, "ss") {
		return lower[:len(lower)-1]
	}
	return lower
}
