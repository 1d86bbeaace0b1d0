package query

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/exoplanetdb/exoplanetdb/internal/exoplanet"
	"github.com/exoplanetdb/exoplanetdb/internal/store"
)

// Build turns a Filter into a parameterised SELECT against the exoplanets
// table. Clauses are emitted in a fixed field order so the same filter always
// yields the same text.
func Build(filter Filter, dialect store.Dialect) (Statement, error) {
	if err := validate(filter); err != nil {
		return Statement{}, err
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(selectList(filter.Columns))
	sb.WriteString(" FROM ")
	sb.WriteString(store.QuoteIdent(exoplanet.TableName))

	where := &clauseList{dialect: dialect}
	if filter.DiscoveryMethod != nil {
		where.add(exoplanet.ColDiscoveryMethod, "=", *filter.DiscoveryMethod)
	}
	if filter.DiscoveryYear != nil {
		where.add(exoplanet.ColDiscoveryYear, "=", *filter.DiscoveryYear)
	}
	where.addRange(exoplanet.ColOrbitalPeriod, filter.OrbitalPeriod)
	where.addRange(exoplanet.ColHostVMag, filter.HostStarVMag)
	where.addRange(exoplanet.ColPlanetRadius, filter.PlanetRadius)
	where.addRange(exoplanet.ColStellarTemp, filter.HostStarTemp)

	if len(where.clauses) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where.clauses, " AND "))
	}
	if filter.OrderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(store.QuoteIdent(filter.OrderBy))
	}
	if filter.Limit > 0 {
		sb.WriteString(" LIMIT ")
		sb.WriteString(strconv.Itoa(filter.Limit))
	}

	return Statement{SQL: sb.String(), Args: where.args}, nil
}

// DiscoveryMethodsStatement selects the distinct discovery methods.
func DiscoveryMethodsStatement() Statement {
	return Statement{SQL: fmt.Sprintf("SELECT DISTINCT %s FROM %s",
		store.QuoteIdent(exoplanet.ColDiscoveryMethod),
		store.QuoteIdent(exoplanet.TableName),
	)}
}

type clauseList struct {
	dialect store.Dialect
	clauses []string
	args    []any
}

func (c *clauseList) add(column, op string, value any) {
	c.args = append(c.args, value)
	c.clauses = append(c.clauses, fmt.Sprintf("%s %s %s", store.QuoteIdent(column), op, c.dialect.Placeholder(len(c.args))))
}

func (c *clauseList) addRange(column string, r Range) {
	if r.Min != nil {
		c.add(column, ">=", *r.Min)
	}
	if r.Max != nil {
		c.add(column, "<=", *r.Max)
	}
}

func selectList(columns []string) string {
	if len(columns) == 0 {
		return "*"
	}
	quoted := make([]string, 0, len(columns))
	for _, column := range columns {
		quoted = append(quoted, store.QuoteIdent(column))
	}
	return strings.Join(quoted, ", ")
}

func validate(filter Filter) error {
	for _, column := range filter.Columns {
		if !exoplanet.IsKnownColumn(column) {
			return fmt.Errorf("%w: unknown column %q", exoplanet.ErrInvalidFilter, column)
		}
	}
	if filter.OrderBy != "" && !exoplanet.IsKnownColumn(filter.OrderBy) {
		return fmt.Errorf("%w: unknown order by column %q", exoplanet.ErrInvalidFilter, filter.OrderBy)
	}
	for _, r := range []struct {
		column string
		bounds Range
	}{
		{exoplanet.ColOrbitalPeriod, filter.OrbitalPeriod},
		{exoplanet.ColHostVMag, filter.HostStarVMag},
		{exoplanet.ColPlanetRadius, filter.PlanetRadius},
		{exoplanet.ColStellarTemp, filter.HostStarTemp},
	} {
		for _, bound := range []*float64{r.bounds.Min, r.bounds.Max} {
			if bound != nil && (math.IsNaN(*bound) || math.IsInf(*bound, 0)) {
				return fmt.Errorf("%w: %s bound must be finite, got %v", exoplanet.ErrInvalidFilter, r.column, *bound)
			}
		}
	}
	if filter.Limit < 0 {
		return fmt.Errorf("%w: limit must be >= 0, got %d", exoplanet.ErrInvalidFilter, filter.Limit)
	}
	return nil
}
