package function

import (
	"strings"

	"github.com/brimdata/vdb"
)

const (
	CategoryNumeric    = "numeric"
	CategoryString     = "string"
	CategoryDatetime   = "datetime"
	CategoryConversion = "conversion"
	CategoryMisc       = "miscellaneous"
	CategoryArray      = "array"
)

// fn builds a system method.  A parameter type ending in "..." marks the
// vararg tail.
func fn(category, name, result string, params ...string) *Method {
	m := &Method{
		Name:     name,
		Category: category,
		Result:   Parameter{Name: "result", Type: result},
	}
	for k, p := range params {
		typ, vararg := strings.CutSuffix(p, "...")
		m.Params = append(m.Params, Parameter{
			Name:   "arg" + string(rune('1'+k)),
			Type:   typ,
			Vararg: vararg,
		})
	}
	return m
}

func withDeterminism(d Determinism, m *Method) *Method {
	m.Determinism = d
	return m
}

var arithmeticTypes = []string{vdb.Integer, vdb.Long, vdb.BigInteger, vdb.Float, vdb.Double, vdb.BigDecimal}

func newSystemLibrary(v vdb.Version) *Library {
	var methods []*Method
	add := func(m ...*Method) {
		methods = append(methods, m...)
	}
	for _, t := range arithmeticTypes {
		for _, op := range []string{"+", "-", "*", "/"} {
			add(fn(CategoryNumeric, op, t, t, t))
		}
		add(fn(CategoryNumeric, "abs", t, t))
		add(fn(CategoryNumeric, "sign", vdb.Integer, t))
	}
	for _, t := range []string{vdb.Integer, vdb.Long, vdb.BigInteger, vdb.BigDecimal} {
		add(fn(CategoryNumeric, "mod", t, t, t))
	}
	for _, t := range []string{vdb.Float, vdb.Double, vdb.BigDecimal} {
		add(fn(CategoryNumeric, "ceiling", t, t))
		add(fn(CategoryNumeric, "floor", t, t))
		add(fn(CategoryNumeric, "round", t, t, vdb.Integer))
	}
	add(
		fn(CategoryNumeric, "sqrt", vdb.Double, vdb.Double),
		fn(CategoryNumeric, "power", vdb.Double, vdb.Double, vdb.Double),
		fn(CategoryNumeric, "power", vdb.BigInteger, vdb.BigInteger, vdb.Integer),
		withDeterminism(Nondeterministic, fn(CategoryNumeric, "rand", vdb.Double)),
		withDeterminism(Nondeterministic, fn(CategoryNumeric, "rand", vdb.Double, vdb.Integer)),
	)

	add(
		fn(CategoryString, "concat", vdb.String, vdb.String, vdb.String),
		fn(CategoryString, "concat", vdb.Clob, vdb.Clob, vdb.Clob),
		fn(CategoryString, "||", vdb.String, vdb.String, vdb.String),
		fn(CategoryString, "||", vdb.Clob, vdb.Clob, vdb.Clob),
		fn(CategoryString, "length", vdb.Integer, vdb.String),
		fn(CategoryString, "upper", vdb.String, vdb.String),
		fn(CategoryString, "upper", vdb.Clob, vdb.Clob),
		fn(CategoryString, "lower", vdb.String, vdb.String),
		fn(CategoryString, "lower", vdb.Clob, vdb.Clob),
		fn(CategoryString, "ucase", vdb.String, vdb.String),
		fn(CategoryString, "lcase", vdb.String, vdb.String),
		fn(CategoryString, "initcap", vdb.String, vdb.String),
		fn(CategoryString, "trim", vdb.String, vdb.String),
		fn(CategoryString, "ltrim", vdb.String, vdb.String),
		fn(CategoryString, "rtrim", vdb.String, vdb.String),
		fn(CategoryString, "substring", vdb.String, vdb.String, vdb.Integer),
		fn(CategoryString, "substring", vdb.String, vdb.String, vdb.Integer, vdb.Integer),
		fn(CategoryString, "left", vdb.String, vdb.String, vdb.Integer),
		fn(CategoryString, "right", vdb.String, vdb.String, vdb.Integer),
		fn(CategoryString, "replace", vdb.String, vdb.String, vdb.String, vdb.String),
		fn(CategoryString, "repeat", vdb.String, vdb.String, vdb.Integer),
		fn(CategoryString, "locate", vdb.Integer, vdb.String, vdb.String),
		fn(CategoryString, "locate", vdb.Integer, vdb.String, vdb.String, vdb.Integer),
		fn(CategoryString, "ascii", vdb.Integer, vdb.String),
		fn(CategoryString, "chr", vdb.Char, vdb.Integer),
		fn(CategoryString, "lpad", vdb.String, vdb.String, vdb.Integer),
		fn(CategoryString, "rpad", vdb.String, vdb.String, vdb.Integer),
	)

	add(
		withDeterminism(CommandDeterministic, fn(CategoryDatetime, "now", vdb.Timestamp)),
		withDeterminism(CommandDeterministic, fn(CategoryDatetime, "curdate", vdb.Date)),
		withDeterminism(CommandDeterministic, fn(CategoryDatetime, "curtime", vdb.Time)),
		fn(CategoryDatetime, "parsedate", vdb.Date, vdb.String, vdb.String),
		fn(CategoryDatetime, "parsetimestamp", vdb.Timestamp, vdb.String, vdb.String),
		fn(CategoryDatetime, "formatdate", vdb.String, vdb.Date, vdb.String),
		fn(CategoryDatetime, "formattimestamp", vdb.String, vdb.Timestamp, vdb.String),
		fn(CategoryDatetime, "timestampadd", vdb.Timestamp, vdb.String, vdb.Integer, vdb.Timestamp),
		fn(CategoryDatetime, "timestampdiff", vdb.Long, vdb.String, vdb.Timestamp, vdb.Timestamp),
	)
	for _, part := range []string{"year", "month", "dayofmonth", "quarter", "week", "dayofweek"} {
		add(fn(CategoryDatetime, part, vdb.Integer, vdb.Date), fn(CategoryDatetime, part, vdb.Integer, vdb.Timestamp))
	}
	for _, part := range []string{"hour", "minute", "second"} {
		add(fn(CategoryDatetime, part, vdb.Integer, vdb.Time), fn(CategoryDatetime, part, vdb.Integer, vdb.Timestamp))
	}

	for _, t := range vdb.Primitives() {
		if t == vdb.Null {
			continue
		}
		add(
			fn(CategoryMisc, "coalesce", t, t, t, t+"..."),
			fn(CategoryMisc, "ifnull", t, t, t),
			fn(CategoryMisc, "nvl", t, t, t),
			fn(CategoryMisc, "nullif", t, t, t),
		)
	}
	add(
		withDeterminism(Nondeterministic, fn(CategoryMisc, "uuid", vdb.String)),
		withDeterminism(SessionDeterministic, fn(CategoryMisc, "user", vdb.String)),
		withDeterminism(SessionDeterministic, fn(CategoryMisc, "database", vdb.String)),
	)

	// Conversions are keyed by source type with a string placeholder for
	// the target.
	for _, t := range vdb.Primitives() {
		add(fn(CategoryConversion, Convert, vdb.Object, t, vdb.String))
		add(fn(CategoryConversion, Cast, vdb.Object, t, vdb.String))
	}

	if !v.IsLegacy() {
		add(
			fn(CategoryArray, "array_length", vdb.Integer, vdb.ArrayOf(vdb.Object)),
			fn(CategoryArray, "array_get", vdb.Object, vdb.ArrayOf(vdb.Object), vdb.Integer),
			fn(CategoryString, "concat", vdb.String, vdb.String, vdb.String, vdb.String+"..."),
			fn(CategoryMisc, "jsonparse", vdb.JSON, vdb.String, vdb.Boolean),
			fn(CategoryMisc, "jsonarray", vdb.JSON, vdb.Object+"..."),
		)
	}
	return NewLibrary(methods...)
}
