package repository

import (
	"strconv"
	"strings"
)

// conditions accumulates AND-ed WHERE clauses with positional arguments.
// Every "?" in a clause refers to the same single argument.
type conditions struct {
	clauses []string
	args    []interface{}
}

func (c *conditions) add(clause string, arg interface{}) {
	c.args = append(c.args, arg)
	c.clauses = append(c.clauses, strings.ReplaceAll(clause, "?", "$"+strconv.Itoa(len(c.args))))
}

// raw adds a clause that takes no argument.
func (c *conditions) raw(clause string) {
	c.clauses = append(c.clauses, clause)
}

func (c *conditions) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

// page appends LIMIT/OFFSET placeholders and returns the clause with the
// full argument list. A non-positive limit binds NULL, which Postgres
// treats as no limit.
func (c *conditions) page(limit, offset int) (string, []interface{}) {
	var lim interface{}
	if limit > 0 {
		lim = limit
	}
	args := append(append([]interface{}{}, c.args...), lim, offset)
	n := len(c.args)
	return " LIMIT $" + strconv.Itoa(n+1) + " OFFSET $" + strconv.Itoa(n+2), args
}
