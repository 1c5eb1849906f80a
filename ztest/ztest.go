// Package ztest runs formulaic resolution tests ("ztests") defined in YAML
// files.  Each test names a catalog and a SQL command, resolves the command
// in-process and compares what it produced with the expected output or
// error.
//
// A test that resolves a command and checks its rendering and column
// types looks like this:
//
//	catalog: parts.yaml
//
//	sql: SELECT e2 + 1 FROM pm1.g1 WHERE e1 = 5
//
//	output: |
//	  SELECT (pm1.g1.e2 + 1) FROM pm1.g1 WHERE pm1.g1.e1 = '5'
//	  expr1 integer
//
// The first line of the output is the resolved command rendered as SQL
// with implicit conversions and canonical group names.  One line per
// projected column follows giving its name and type.
//
// The catalog field names a catalog file relative to the directory of
// the test.  A test may instead give the catalog inline in its
// catalog-yaml field.  The version field overrides the catalog's version
// so that one catalog serves both legacy and current resolution.
//
// A test that expects resolution to fail gives an error field instead of
// an output field:
//
//	sql: SELECT nope FROM pm1.g1
//
//	error: |
//	  column "nope" not found; did you mean "e1"?
//
// The mode field selects what the output describes:
//
//	resolve   the resolved command and its columns (the default)
//	keys      the key preserved groups of a query, one per line
//	demand    the catalog columns the command reads, one group.column per line
//	validate  the general validator's report items, one per line
//	catalog   the catalog validator's report items for the catalog itself;
//	          the sql field is not used
//
// Ztest YAML files for a package reside in a subdirectory named
// testdata/ztest.
//
//	pkg/
//	  pkg.go
//	  pkg_test.go
//	  testdata/
//	    ztest/
//	      test-1.yaml
//	      test-2.yaml
//	      ...
//
// Name YAML files descriptively since each ztest runs as a subtest named
// for the file that defines it.
//
// pkg_test.go should contain a Go test named TestZTest that calls Run.
//
//	func TestZTest(t *testing.T) { ztest.Run(t, "testdata/ztest") }
//
// Tests can be skipped by setting the skip field to a non-empty string.  A
// message containing the string will be written to the test log.  A test
// with a tag runs only when the ZTEST_TAG environment variable matches it.
package ztest

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/brimdata/vdb/compiler/ast"
	"github.com/brimdata/vdb/compiler/optimizer"
	"github.com/brimdata/vdb/compiler/optimizer/demand"
	"github.com/brimdata/vdb/compiler/parser"
	"github.com/brimdata/vdb/compiler/semantic"
	"github.com/brimdata/vdb/compiler/sfmt"
	"github.com/brimdata/vdb/metadata/catalog"
	"github.com/brimdata/vdb/validator"
	"github.com/pmezard/go-difflib/difflib"
	"gopkg.in/yaml.v3"
)

type Bundle struct {
	TestName string
	FileName string
	Test     *ZTest
	Error    error
}

func Load(dirname string) ([]Bundle, error) {
	var bundles []Bundle
	fileinfos, err := os.ReadDir(dirname)
	if err != nil {
		return nil, err
	}
	for _, fi := range fileinfos {
		filename := fi.Name()
		const dotyaml = ".yaml"
		if !strings.HasSuffix(filename, dotyaml) {
			continue
		}
		testname := strings.TrimSuffix(filename, dotyaml)
		filename = filepath.Join(dirname, filename)
		zt, err := FromYAMLFile(filename)
		bundles = append(bundles, Bundle{testname, filename, zt, err})
	}
	return bundles, nil
}

// Run runs the ztests in the directory named dirname.  For each file f.yaml
// in the directory, Run calls FromYAMLFile to load a ztest and then runs it
// in a subtest named f.  Files that are not ztests, such as shared
// catalogs, belong in another directory.
func Run(t *testing.T, dirname string) {
	bundles, err := Load(dirname)
	if err != nil {
		t.Fatal(err)
	}
	for _, b := range bundles {
		t.Run(b.TestName, func(t *testing.T) {
			t.Parallel()
			if b.Error != nil {
				t.Fatalf("%s: %s", b.FileName, b.Error)
			}
			b.Test.Run(t, b.FileName)
		})
	}
}

const (
	ModeResolve  = "resolve"
	ModeKeys     = "keys"
	ModeDemand   = "demand"
	ModeValidate = "validate"
	ModeCatalog  = "catalog"
)

// ZTest defines a ztest.
type ZTest struct {
	Skip string `yaml:"skip,omitempty"`
	Tag  string `yaml:"tag,omitempty"`

	Catalog     string `yaml:"catalog,omitempty"`
	CatalogYAML string `yaml:"catalog-yaml,omitempty"`
	Version     string `yaml:"version,omitempty"`
	// KeepNullTypes resolves the way the catalog validator does,
	// leaving projected null literals untyped.
	KeepNullTypes bool `yaml:"keep-null-types,omitempty"`

	SQL    string `yaml:"sql,omitempty"`
	Mode   string `yaml:"mode,omitempty"`
	Output string `yaml:"output,omitempty"`
	Error  string `yaml:"error,omitempty"`
}

func (z *ZTest) check() error {
	if (z.Catalog == "") == (z.CatalogYAML == "") {
		return errors.New("exactly one of catalog or catalog-yaml must be present")
	}
	switch z.Mode {
	case "", ModeResolve, ModeKeys, ModeDemand, ModeValidate:
		if z.SQL == "" {
			return errors.New("sql field missing")
		}
	case ModeCatalog:
		if z.SQL != "" {
			return errors.New("sql field not allowed in catalog mode")
		}
	default:
		return fmt.Errorf("unknown mode %q", z.Mode)
	}
	return nil
}

// FromYAMLFile loads a ZTest from the YAML file named filename.  Unknown
// fields are an error.
func FromYAMLFile(filename string) (*ZTest, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	var z ZTest
	if err := dec.Decode(&z); err != nil {
		return nil, err
	}
	var extra yaml.Node
	if err := dec.Decode(&extra); err == nil {
		return nil, errors.New("file must contain one YAML document")
	}
	return &z, nil
}

func (z *ZTest) ShouldSkip() string {
	switch {
	case z.Skip != "":
		return z.Skip
	case z.Tag != "" && z.Tag != os.Getenv("ZTEST_TAG"):
		return fmt.Sprintf("tag %q does not match ZTEST_TAG=%q", z.Tag, os.Getenv("ZTEST_TAG"))
	}
	return ""
}

func (z *ZTest) Run(t *testing.T, filename string) {
	if msg := z.ShouldSkip(); msg != "" {
		t.Skip("skipping test:", msg)
	}
	if err := z.RunInternal(filepath.Dir(filename)); err != nil {
		t.Fatalf("%s: %s", filename, err)
	}
}

// RunInternal runs the test with catalog files taken relative to dir.
func (z *ZTest) RunInternal(dir string) error {
	if err := z.check(); err != nil {
		return fmt.Errorf("bad yaml format: %w", err)
	}
	v, err := z.loadCatalog(dir)
	if err != nil {
		return err
	}
	out, err := z.run(v)
	return z.diff(out, err)
}

func (z *ZTest) loadCatalog(dir string) (*catalog.VDB, error) {
	src := []byte(z.CatalogYAML)
	if z.Catalog != "" {
		b, err := os.ReadFile(filepath.Join(dir, z.Catalog))
		if err != nil {
			return nil, err
		}
		src = b
	}
	var v catalog.VDB
	if err := yaml.Unmarshal(src, &v); err != nil {
		return nil, err
	}
	if z.Version != "" {
		v.Version = z.Version
	}
	if err := v.Link(); err != nil {
		return nil, err
	}
	return &v, nil
}

func (z *ZTest) run(v *catalog.VDB) (string, error) {
	if z.Mode == ModeCatalog {
		return items(validator.ValidateCatalog(v, validator.Options{})), nil
	}
	md, err := catalog.NewMetadata(v, nil)
	if err != nil {
		return "", err
	}
	cmd, err := parser.ParseCommand(z.SQL)
	if err != nil {
		return "", err
	}
	r := semantic.New(md, semantic.Options{KeepNullTypes: z.KeepNullTypes})
	if err := r.ResolveCommand(cmd); err != nil {
		return "", err
	}
	switch z.Mode {
	case ModeKeys:
		q, ok := cmd.(*ast.Query)
		if !ok {
			return "", fmt.Errorf("keys mode requires a query, not %T", cmd)
		}
		groups, err := optimizer.New(r.Metadata(), nil).KeyPreserved(q)
		if err != nil {
			return "", err
		}
		var b strings.Builder
		for _, g := range groups {
			fmt.Fprintln(&b, g.Name)
		}
		return b.String(), nil
	case ModeDemand:
		var b strings.Builder
		for _, path := range demand.Paths(optimizer.DemandForCommand(cmd)) {
			fmt.Fprintln(&b, strings.Join(path, "."))
		}
		return b.String(), nil
	case ModeValidate:
		return items(validator.Validate(cmd, r.Metadata())), nil
	}
	return Describe(cmd), nil
}

// Describe renders a resolved command followed by the name and type of
// each column it projects.
func Describe(cmd ast.Command) string {
	var b strings.Builder
	b.WriteString(sfmt.Command(cmd))
	b.WriteByte('\n')
	if projected, ok := ast.ProjectedSymbols(cmd); ok {
		for _, p := range projected {
			fmt.Fprintf(&b, "%s %s\n", ast.OutputName(p), ast.TypeOf(p))
		}
	}
	return b.String()
}

func items(r *validator.Report) string {
	var b strings.Builder
	for _, item := range r.Items {
		b.WriteString(item.String())
		b.WriteByte('\n')
	}
	return b.String()
}

func (z *ZTest) diff(out string, err error) error {
	var outDiffErr, errDiffErr error
	if z.Output != out {
		outDiffErr = diffErr("output", z.Output, out)
	}
	var errStr string
	if err != nil {
		// Append newline if err doesn't end with one.
		errStr = strings.TrimSuffix(err.Error(), "\n") + "\n"
	}
	if z.Error != errStr {
		errDiffErr = diffErr("error", z.Error, errStr)
	}
	return errors.Join(outDiffErr, errDiffErr)
}

func diffErr(name, expected, actual string) error {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected),
		FromFile: "expected",
		B:        difflib.SplitLines(actual),
		ToFile:   "actual",
		Context:  5,
	})
	if err != nil {
		panic("ztest: " + err.Error())
	}
	return fmt.Errorf("expected and actual %s differ:\n%s", name, diff)
}
