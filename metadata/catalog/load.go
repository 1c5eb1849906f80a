package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/brimdata/vdb"
	"github.com/brimdata/vdb/coerce"
	"github.com/brimdata/vdb/function"
	"github.com/brimdata/vdb/metadata"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

func Load(path string) (*VDB, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	v, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

func Parse(b []byte) (*VDB, error) {
	var v VDB
	if err := yaml.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	if err := v.Link(); err != nil {
		return nil, err
	}
	return &v, nil
}

// Link wires up back pointers, canonicalizes type names, composes object
// names to NFC, builds keys and links foreign keys that refer to tables in
// their own schema.  Foreign keys and materialized tables that cross
// schemas are left for the validator to link.
func (v *VDB) Link() error {
	if _, err := vdb.ParseVersion(v.Version); err != nil {
		return err
	}
	var errs []error
	for _, s := range v.Schemas {
		s.vdb = v
		s.Name = norm.NFC.String(s.Name)
		for _, t := range s.Tables {
			t.schema = s
			t.Name = norm.NFC.String(t.Name)
			errs = append(errs, t.link()...)
		}
		for _, p := range s.Procedures {
			p.schema = s
			p.Name = norm.NFC.String(p.Name)
			errs = append(errs, p.link()...)
		}
		for _, f := range s.Functions {
			f.schema = s
			errs = append(errs, f.link()...)
		}
	}
	for _, s := range v.Schemas {
		for _, t := range s.Tables {
			for _, fk := range t.ForeignKeys {
				name := fk.References
				if schema, local, ok := strings.Cut(name, "."); ok {
					if !strings.EqualFold(schema, s.Name) {
						continue
					}
					name = local
				}
				if fk.key == nil {
					continue
				}
				if ref := s.Table(name); ref != nil {
					if k := ref.FindKey(fk.ReferenceColumns, len(fk.Columns)); k != nil {
						fk.Link(k)
					}
				}
			}
		}
	}
	return errors.Join(errs...)
}

func canonicalType(what, typ string) (string, error) {
	t, ok := vdb.LookupPrimitive(typ)
	if !ok {
		return "", fmt.Errorf("%s: unknown type %q", what, typ)
	}
	return t, nil
}

func (t *Table) link() []error {
	var errs []error
	for _, c := range t.Columns {
		c.parent = t
		c.Name = norm.NFC.String(c.Name)
		typ, err := canonicalType(c.FullName(), c.Type)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		c.Type = typ
	}
	t.keys = nil
	if len(t.PrimaryKey) > 0 {
		k, err := t.buildKey("pk", t.PrimaryKey)
		if err != nil {
			errs = append(errs, err)
		} else {
			k.Primary = true
			t.keys = append(t.keys, k)
		}
	}
	for _, def := range t.UniqueKeys {
		k, err := t.buildKey(def.Name, def.Columns)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		t.keys = append(t.keys, k)
	}
	for _, fk := range t.ForeignKeys {
		k, err := t.buildKey(fk.Name, fk.Columns)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		fk.key = &metadata.ForeignKey{Name: fk.Name, Columns: k.Columns}
	}
	return errs
}

func (t *Table) buildKey(name string, columns []string) (*metadata.Key, error) {
	k := &metadata.Key{Name: name}
	for _, col := range columns {
		c := t.Column(col)
		if c == nil {
			return nil, fmt.Errorf("%s: key %q names unknown column %q", t.FullName(), k.Name, col)
		}
		k.Columns = append(k.Columns, c)
	}
	return k, nil
}

func parseMode(s string) (metadata.ParamMode, error) {
	switch strings.ToLower(s) {
	case "", "in":
		return metadata.In, nil
	case "out":
		return metadata.Out, nil
	case "inout":
		return metadata.InOut, nil
	case "return":
		return metadata.Return, nil
	}
	return 0, fmt.Errorf("unknown parameter mode %q", s)
}

func (p *Procedure) link() []error {
	var errs []error
	info := &metadata.Procedure{ID: p, Name: p.FullName(), Virtual: p.Virtual, Body: p.Body}
	for _, param := range p.Params {
		param.parent = p
		param.Name = norm.NFC.String(param.Name)
		typ, err := canonicalType(param.FullName(), param.Type)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		param.Type = typ
		mode, err := parseMode(param.Mode)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", param.FullName(), err))
			continue
		}
		pi := &metadata.ProcedureParam{
			ID:       param,
			Name:     param.Name,
			Type:     typ,
			Mode:     mode,
			Vararg:   param.Vararg,
			Nullable: param.Nullable == nil || *param.Nullable,
		}
		if param.Default != nil {
			pi.HasDefault = true
			pi.Default, err = coerce.Convert(*param.Default, vdb.String, typ)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: default: %w", param.FullName(), err))
			}
		}
		info.Params = append(info.Params, pi)
	}
	for _, c := range p.ResultSet {
		c.parent = p
		c.Name = norm.NFC.String(c.Name)
		typ, err := canonicalType(c.FullName(), c.Type)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		c.Type = typ
		info.ResultSet = append(info.ResultSet, &metadata.ResultColumn{ID: c, Name: c.Name, Type: typ})
	}
	p.info = info
	return errs
}

func (f *Function) link() []error {
	var errs []error
	for _, param := range f.Params {
		param.parent = f
		typ, err := canonicalType(param.FullName(), param.Type)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		param.Type = typ
	}
	typ, err := canonicalType(f.FullName(), f.Returns)
	if err != nil {
		errs = append(errs, err)
	} else {
		f.Returns = typ
	}
	return errs
}

// Method converts f to a function library entry.
func (f *Function) Method() *function.Method {
	m := &function.Method{
		Name:     f.Name,
		Category: f.Category,
		Schema:   f.schema.Name,
		Result:   function.Parameter{Name: "result", Type: f.Returns},
	}
	for _, p := range f.Params {
		m.Params = append(m.Params, function.Parameter{Name: p.Name, Type: p.Type, Vararg: p.Vararg})
	}
	switch strings.ToLower(f.PushDown) {
	case "required":
		m.PushDown = function.MustPushDown
	case "cannot":
		m.PushDown = function.CannotPushDown
	}
	if f.Deterministic != nil && !*f.Deterministic {
		m.Determinism = function.Nondeterministic
	}
	return m
}
