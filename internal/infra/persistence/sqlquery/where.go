// Package sqlquery composes parameterized WHERE clauses for the database/sql
// and pgx repositories.
package sqlquery

import (
	"strconv"
	"strings"
)

type Dialect int

const (
	// Question is the `?` placeholder style (MySQL, SQLite).
	Question Dialect = iota
	// Dollar is the `$n` placeholder style (PostgreSQL).
	Dollar
)

// Where is an immutable list of AND-ed clauses with their arguments.
// Clauses are written with `?` placeholders and rewritten for the dialect.
type Where struct {
	dialect Dialect
	clauses []string
	args    []any
}

func New(d Dialect) Where {
	return Where{dialect: d}
}

// When returns w extended with clause if cond holds, otherwise w unchanged.
func (w Where) When(cond bool, clause string, args ...any) Where {
	if !cond {
		return w
	}
	next := Where{
		dialect: w.dialect,
		clauses: make([]string, len(w.clauses), len(w.clauses)+1),
		args:    make([]any, len(w.args), len(w.args)+len(args)),
	}
	copy(next.clauses, w.clauses)
	copy(next.args, w.args)
	next.clauses = append(next.clauses, w.rewrite(clause, len(w.args)))
	next.args = append(next.args, args...)
	return next
}

// SQL renders " WHERE a AND b", or "" when there are no clauses.
func (w Where) SQL() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// Args returns a copy of the bound arguments followed by extra.
func (w Where) Args(extra ...any) []any {
	out := make([]any, 0, len(w.args)+len(extra))
	out = append(out, w.args...)
	return append(out, extra...)
}

// Next returns the placeholders for n arguments bound after the clauses.
func (w Where) Next(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = w.placeholder(len(w.args) + i + 1)
	}
	return out
}

func (w Where) placeholder(pos int) string {
	if w.dialect == Dollar {
		return "$" + strconv.Itoa(pos)
	}
	return "?"
}

func (w Where) rewrite(clause string, bound int) string {
	if w.dialect != Dollar || !strings.Contains(clause, "?") {
		return clause
	}
	var b strings.Builder
	pos := bound
	for _, r := range clause {
		if r == '?' {
			pos++
			b.WriteString(w.placeholder(pos))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// LikeEscape is the escape character used by ContainsPattern.
const LikeEscape = "!"

// ContainsPattern builds an unanchored LIKE pattern matching s literally.
// Use it with `LIKE ? ESCAPE '!'`.
func ContainsPattern(s string) string {
	r := strings.NewReplacer(LikeEscape, LikeEscape+LikeEscape, "%", LikeEscape+"%", "_", LikeEscape+"_")
	return "%" + r.Replace(s) + "%"
}
