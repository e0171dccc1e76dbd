package ground

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"stripsplan/internal/fact"
	"stripsplan/internal/lifted"
	"stripsplan/internal/opid"
)

// RunRelational implements C3's relational back-end (spec.md §4.3.1): every
// predicate becomes a SQL relation, every action schema becomes a
// conjunctive query over its precondition atoms joined against per-type
// object tables, and the fixpoint iterates by re-querying every schema
// until a pass discovers no new row.
func RunRelational(ctx context.Context, p *lifted.Problem, cfg Config) (*Result, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, errBackend("open in-memory sqlite", err)
	}
	defer db.Close()

	r := &relState{
		db:     db,
		domain: p.Domain,
		table:  fact.NewTable(),
		ops:    opid.NewInterner(),
		seen:   map[string]bool{},
		cfg:    cfg,
	}
	if r.cfg.layered() {
		r.layer = map[FactRef]int{}
	}
	m := newMaterializer(p.Domain, r.table, r.ops, p.UnitCostMetric)
	m.log = cfg.logger()

	if err := r.createSchema(ctx); err != nil {
		return nil, err
	}
	if err := r.seedTypes(ctx, p); err != nil {
		return nil, err
	}
	if err := r.seedInit(ctx, p); err != nil {
		return nil, err
	}
	staticTrueBound := r.table.Static.Len()

	log := cfg.logger()
	var ops []*RawOperator
	round := 0
	for {
		discovered := 0
		for schemaID, schema := range p.Domain.Actions {
			rows, err := r.enumerate(ctx, schema)
			if err != nil {
				return nil, err
			}
			for _, args := range rows {
				key := opKey(schemaID, args)
				if r.seen[key] {
					continue
				}
				r.seen[key] = true
				op, ok := m.Materialize(schemaID, schema, args)
				if !ok {
					continue
				}
				ops = append(ops, op)
				discovered++
				if r.cfg.layered() {
					r.stampLayer(op, round+1)
				}
				if err := r.assertAdds(ctx, op); err != nil {
					return nil, err
				}
			}
		}
		round++
		log.Debug("relational fixpoint round",
			zap.Int("round", round),
			zap.Int("discovered", discovered),
			zap.Int("dynamic_atoms", r.table.Dynamic.Len()))
		if discovered == 0 {
			break
		}
		if r.cfg.MaxLayers > 0 && round >= r.cfg.MaxLayers {
			r.capped = true
			log.Warn("relational fixpoint capped by MaxLayers", zap.Int("max_layers", r.cfg.MaxLayers))
			break
		}
		if r.cfg.MaxAtoms > 0 && r.table.Dynamic.Len() >= r.cfg.MaxAtoms {
			r.capped = true
			log.Warn("relational fixpoint capped by MaxAtoms", zap.Int("max_atoms", r.cfg.MaxAtoms))
			break
		}
	}

	res := &Result{
		Table:           r.table,
		Operators:       ops,
		Capped:          r.capped,
		Layer:           r.layer,
		Unsolvable:      goalUnreachable(p, r.table),
		StaticTrueBound: staticTrueBound,
	}
	return res, nil
}

type relState struct {
	db     *sql.DB
	domain *lifted.Domain
	table  *fact.Table
	ops    *opid.Interner
	seen   map[string]bool
	cfg    Config
	capped bool
	layer  map[FactRef]int
}

func opKey(schemaID int, args []string) string {
	return fmt.Sprintf("%d/%s", schemaID, strings.Join(args, "\x1f"))
}

func (r *relState) stampLayer(op *RawOperator, layer int) {
	for _, ref := range op.Add {
		if _, ok := r.layer[ref]; !ok {
			r.layer[ref] = layer
		}
	}
}

func sqlIdent(prefix, name string) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, c := range name {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			b.WriteRune(c)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func predTable(name string) string { return sqlIdent("pred_", name) }
func typeTable(t lifted.TypeName) string { return sqlIdent("type_", string(t)) }

func (r *relState) createSchema(ctx context.Context) error {
	for _, name := range r.domain.Predicates.Names() {
		p, _ := r.domain.Predicates.Lookup(name)
		if name == lifted.EqualityPredicate {
			continue
		}
		var cols []string
		for i := range p.ParamTypes {
			cols = append(cols, fmt.Sprintf("arg%d TEXT", i))
		}
		stmt := fmt.Sprintf("CREATE TABLE %s (%s, PRIMARY KEY (%s))", predTable(name), strings.Join(cols, ", "), argCols(len(p.ParamTypes)))
		if len(p.ParamTypes) == 0 {
			stmt = fmt.Sprintf("CREATE TABLE %s (present INTEGER PRIMARY KEY)", predTable(name))
		}
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return errBackend("create predicate table "+name, err)
		}
	}
	for _, t := range r.domain.Types.Names() {
		stmt := fmt.Sprintf("CREATE TABLE %s (obj TEXT PRIMARY KEY)", typeTable(t))
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return errBackend("create type table "+string(t), err)
		}
	}
	return nil
}

func argCols(n int) string {
	cols := make([]string, n)
	for i := range cols {
		cols[i] = fmt.Sprintf("arg%d", i)
	}
	return strings.Join(cols, ", ")
}

func (r *relState) seedTypes(ctx context.Context, p *lifted.Problem) error {
	for _, t := range r.domain.Types.Names() {
		for _, obj := range p.Objects.Objects() {
			if p.Objects.IsA(obj, t) {
				if _, err := r.db.ExecContext(ctx, fmt.Sprintf("INSERT OR IGNORE INTO %s(obj) VALUES (?)", typeTable(t)), obj); err != nil {
					return errBackend("seed type table", err)
				}
			}
		}
	}
	return nil
}

func (r *relState) seedInit(ctx context.Context, p *lifted.Problem) error {
	for _, atom := range p.Init {
		if r.domain.Predicates.IsStatic(atom.Predicate) {
			r.table.Static.Intern(atom.Predicate, atom.Args)
		} else {
			r.table.Dynamic.Intern(atom.Predicate, atom.Args)
		}
		if err := r.insertRow(ctx, atom.Predicate, atom.Args); err != nil {
			return err
		}
	}
	for _, fn := range p.InitFn {
		r.table.Function.Intern(fn.Function, fn.Args, fn.Value)
	}
	return nil
}

func (r *relState) insertRow(ctx context.Context, predicate string, args []string) error {
	if len(args) == 0 {
		_, err := r.db.ExecContext(ctx, fmt.Sprintf("INSERT OR IGNORE INTO %s(present) VALUES (1)", predTable(predicate)))
		return err
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(args)), ",")
	stmt := fmt.Sprintf("INSERT OR IGNORE INTO %s(%s) VALUES (%s)", predTable(predicate), argCols(len(args)), placeholders)
	vals := make([]any, len(args))
	for i, a := range args {
		vals[i] = a
	}
	if _, err := r.db.ExecContext(ctx, stmt, vals...); err != nil {
		return errBackend("insert row into "+predicate, err)
	}
	return nil
}

func (r *relState) assertAdds(ctx context.Context, op *RawOperator) error {
	for _, ref := range op.Add {
		if ref.Origin != fact.Dynamic {
			continue
		}
		atom := r.table.Dynamic.Atom(ref.ID)
		if err := r.insertRow(ctx, atom.Predicate, atom.Args); err != nil {
			return err
		}
	}
	for _, c := range op.Conditionals {
		for _, ref := range c.Add {
			if ref.Origin != fact.Dynamic {
				continue
			}
			atom := r.table.Dynamic.Atom(ref.ID)
			if err := r.insertRow(ctx, atom.Predicate, atom.Args); err != nil {
				return err
			}
		}
	}
	return nil
}

type colRef struct {
	alias string
	col   string
}

// enumerate runs the schema's conjunctive query and returns every
// satisfying argument tuple, in parameter order.
func (r *relState) enumerate(ctx context.Context, schema *lifted.ActionSchema) ([][]string, error) {
	query, err := r.buildQuery(schema)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query.text, query.args...)
	if err != nil {
		return nil, errBackend("query schema "+schema.Name, err)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		scanDest := make([]any, len(schema.Params))
		scanPtrs := make([]string, len(schema.Params))
		for i := range scanDest {
			scanDest[i] = &scanPtrs[i]
		}
		if err := rows.Scan(scanDest...); err != nil {
			return nil, errBackend("scan schema "+schema.Name, err)
		}
		out = append(out, append([]string(nil), scanPtrs...))
	}
	return out, rows.Err()
}

type builtQuery struct {
	text string
	args []any
}

func (r *relState) buildQuery(schema *lifted.ActionSchema) (builtQuery, error) {
	var from []string
	var where []string
	var args []any
	first := map[string]colRef{}
	alias := 0
	next := func(p string) string {
		alias++
		return fmt.Sprintf("%s%d", p, alias)
	}

	for _, p := range schema.Params {
		a := next("ty")
		from = append(from, fmt.Sprintf("%s AS %s", typeTable(p.Type), a))
		first[p.Name] = colRef{a, "obj"}
	}

	var antiJoins []string
	for _, lit := range schema.Precond {
		if lit.Predicate == lifted.EqualityPredicate {
			cond, more, err := r.equalityClause(lit, first)
			if err != nil {
				return builtQuery{}, err
			}
			where = append(where, cond)
			args = append(args, more...)
			continue
		}
		if lit.Negated {
			clause, more, err := r.antiJoinClause(lit, first)
			if err != nil {
				return builtQuery{}, err
			}
			antiJoins = append(antiJoins, clause)
			args = append(args, more...)
			continue
		}
		a := next("a")
		from = append(from, fmt.Sprintf("%s AS %s", predTable(lit.Predicate), a))
		for i, t := range lit.Args {
			col := fmt.Sprintf("arg%d", i)
			if t.IsVar {
				ref := first[t.Name]
				where = append(where, fmt.Sprintf("%s.%s = %s.%s", a, col, ref.alias, ref.col))
			} else {
				where = append(where, fmt.Sprintf("%s.%s = ?", a, col))
				args = append(args, t.Name)
			}
		}
	}

	var cols []string
	for _, p := range schema.Params {
		ref := first[p.Name]
		cols = append(cols, fmt.Sprintf("%s.%s", ref.alias, ref.col))
	}

	text := fmt.Sprintf("SELECT DISTINCT %s FROM %s", strings.Join(cols, ", "), strings.Join(from, ", "))
	whereAll := append(where, antiJoins...)
	if len(whereAll) > 0 {
		text += " WHERE " + strings.Join(whereAll, " AND ")
	}
	return builtQuery{text: text, args: args}, nil
}

func (r *relState) equalityClause(lit lifted.Literal, first map[string]colRef) (string, []any, error) {
	op := "="
	if lit.Negated {
		op = "<>"
	}
	side := func(t lifted.Term) (string, any) {
		if t.IsVar {
			ref := first[t.Name]
			return fmt.Sprintf("%s.%s", ref.alias, ref.col), nil
		}
		return "?", t.Name
	}
	lhs, lval := side(lit.Args[0])
	rhs, rval := side(lit.Args[1])
	var args []any
	if lval != nil {
		args = append(args, lval)
	}
	if rval != nil {
		args = append(args, rval)
	}
	return fmt.Sprintf("%s %s %s", lhs, op, rhs), args, nil
}

func (r *relState) antiJoinClause(lit lifted.Literal, first map[string]colRef) (string, []any, error) {
	var conds []string
	var args []any
	for i, t := range lit.Args {
		col := fmt.Sprintf("arg%d", i)
		if t.IsVar {
			ref := first[t.Name]
			conds = append(conds, fmt.Sprintf("x.%s = %s.%s", col, ref.alias, ref.col))
		} else {
			conds = append(conds, fmt.Sprintf("x.%s = ?", col))
			args = append(args, t.Name)
		}
	}
	sub := fmt.Sprintf("NOT EXISTS (SELECT 1 FROM %s x WHERE %s)", predTable(lit.Predicate), strings.Join(conds, " AND "))
	return sub, args, nil
}

func goalUnreachable(p *lifted.Problem, t *fact.Table) bool {
	if p.Goal.Impossible {
		return true
	}
	for _, lit := range p.Goal.Conjuncts {
		if lit.Negated {
			continue
		}
		args := make([]string, len(lit.Args))
		for i, a := range lit.Args {
			args[i] = a.Name
		}
		if _, _, ok := t.FindEither(lit.Predicate, args); !ok {
			return true
		}
	}
	return false
}
