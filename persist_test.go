package dfdl

import (
	"bytes"
	"encoding/gob"
	"errors"
	"reflect"
	"testing"

	"github.com/klauspost/compress/zstd"

	dfdlerrors "github.com/jacoelho/dfdl/errors"
	"github.com/jacoelho/dfdl/schema"
)

func savedSchema() *schema.Term {
	maxV := int64(100)
	return schema.NewComplexElement("msg", schema.Properties{},
		schema.NewSequence(schema.Properties{},
			schema.NewElement("kind", schema.Properties{LengthBits: 8, MaxValue: &maxV}),
			schema.NewElement("tag", schema.Properties{Encoding: "us-ascii", LengthBits: 16}),
		))
}

func compileProcessor(t *testing.T, root *schema.Term, opts ...CompileOption) *DataProcessor {
	t.Helper()
	f := NewCompiler().Compile(root, opts...)
	if f.IsError() {
		t.Fatalf("Compile() diagnostics: %v", f.Diagnostics())
	}
	p, err := f.DataProcessor()
	if err != nil {
		t.Fatalf("DataProcessor() error: %v", err)
	}
	return p
}

func TestSaveReloadRoundTrip(t *testing.T) {
	p := compileProcessor(t, savedSchema(), WithExternalVariable("unit", 8))

	var buf bytes.Buffer
	if err := p.Save(&buf); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	rp, err := ReloadProcessor(&buf)
	if err != nil {
		t.Fatalf("ReloadProcessor() error: %v", err)
	}
	if got := rp.RootSpec(); got != p.RootSpec() {
		t.Fatalf("RootSpec() = %+v, want %+v", got, p.RootSpec())
	}

	// 0xFF violates the declared maximum, so both runs carry the same
	// diagnostics in the same order besides producing the same infoset.
	data := []byte{0xFF, 'o', 'k'}
	orig := p.Parse(data)
	reloaded := rp.Parse(data)
	if orig.Err != nil || reloaded.Err != nil {
		t.Fatalf("Parse() errors: %v, %v", orig.Err, reloaded.Err)
	}
	if orig.BitPos != reloaded.BitPos {
		t.Fatalf("BitPos = %d vs %d", orig.BitPos, reloaded.BitPos)
	}
	if !reflect.DeepEqual(orig.Diagnostics, reloaded.Diagnostics) {
		t.Fatalf("diagnostics differ:\n%v\n%v", orig.Diagnostics, reloaded.Diagnostics)
	}
	for _, name := range []string{"kind", "tag"} {
		a, _ := orig.Infoset.Child(name).Value()
		b, _ := reloaded.Infoset.Child(name).Value()
		if a != b {
			t.Fatalf("%s = %v vs %v", name, a, b)
		}
	}

	// The reloaded processor writes identical bytes.
	out1 := p.Unparse(orig.Infoset)
	out2 := rp.Unparse(reloaded.Infoset)
	if out1.Err != nil || out2.Err != nil {
		t.Fatalf("Unparse() errors: %v, %v", out1.Err, out2.Err)
	}
	if !bytes.Equal(out1.Data, out2.Data) {
		t.Fatalf("unparsed bytes differ: %v vs %v", out1.Data, out2.Data)
	}
}

func TestSaveNilProcessor(t *testing.T) {
	var p *DataProcessor
	if err := p.Save(&bytes.Buffer{}); err == nil {
		t.Fatal("Save() on nil processor: want usage error")
	}
}

func writeArtifact(t *testing.T, a artifact) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatalf("zstd.NewWriter() error: %v", err)
	}
	if err := gob.NewEncoder(enc).Encode(&a); err != nil {
		t.Fatalf("gob encode error: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close error: %v", err)
	}
	return &buf
}

func validArtifactRoot() *artifactTerm {
	return &artifactTerm{
		Name: "msg",
		Kind: uint8(schema.ElementTerm),
		Props: schema.Properties{
			LengthBits: 8,
		},
	}
}

func TestReloadCorruptArchive(t *testing.T) {
	_, err := ReloadProcessor(bytes.NewReader([]byte("definitely not zstd")))
	var rerr *dfdlerrors.ReloadError
	if !errors.As(err, &rerr) || rerr.Code != dfdlerrors.ErrReloadCorrupt {
		t.Fatalf("ReloadProcessor() = %v, want corrupt reload error", err)
	}
}

func TestReloadInvalidPayload(t *testing.T) {
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatalf("zstd.NewWriter() error: %v", err)
	}
	if _, err := enc.Write([]byte("compressed but not an artifact")); err != nil {
		t.Fatalf("write error: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close error: %v", err)
	}

	_, err = ReloadProcessor(&buf)
	var rerr *dfdlerrors.ReloadError
	if !errors.As(err, &rerr) || rerr.Code != dfdlerrors.ErrReloadInvalid {
		t.Fatalf("ReloadProcessor() = %v, want invalid reload error", err)
	}
}

func TestReloadVersionMismatch(t *testing.T) {
	buf := writeArtifact(t, artifact{Version: artifactVersion + 1, Root: validArtifactRoot()})
	_, err := ReloadProcessor(buf)
	var rerr *dfdlerrors.ReloadError
	if !errors.As(err, &rerr) || rerr.Code != dfdlerrors.ErrReloadInvalid {
		t.Fatalf("ReloadProcessor() = %v, want invalid reload error", err)
	}
}

func TestReloadMissingRoot(t *testing.T) {
	buf := writeArtifact(t, artifact{Version: artifactVersion})
	_, err := ReloadProcessor(buf)
	var rerr *dfdlerrors.ReloadError
	if !errors.As(err, &rerr) || rerr.Code != dfdlerrors.ErrReloadInvalid {
		t.Fatalf("ReloadProcessor() = %v, want invalid reload error", err)
	}
}

func TestReloadUnknownCombinatorKind(t *testing.T) {
	buf := writeArtifact(t, artifact{
		Version:       artifactVersion,
		Root:          validArtifactRoot(),
		RequiredKinds: []string{"element", "packed-decimal"},
	})
	_, err := ReloadProcessor(buf)
	var rerr *dfdlerrors.ReloadError
	if !errors.As(err, &rerr) || rerr.Code != dfdlerrors.ErrReloadUnknownKind {
		t.Fatalf("ReloadProcessor() = %v, want unknown-kind reload error", err)
	}
	if len(rerr.KnownKinds) == 0 {
		t.Fatal("KnownKinds empty, want the runtime's kind list for diagnosis")
	}
}

func TestMissingKinds(t *testing.T) {
	missing := missingKinds([]string{"element", "sequence", "packed-decimal"})
	if len(missing) != 1 || missing[0] != "packed-decimal" {
		t.Fatalf("missingKinds() = %v, want [packed-decimal]", missing)
	}
	if got := missingKinds(nil); got != nil {
		t.Fatalf("missingKinds(nil) = %v, want nil", got)
	}
}

func TestSavedKindsCoverCompiledTree(t *testing.T) {
	// Every kind the compiler can emit must be reloadable here.
	known := make(map[string]bool, len(knownCombinatorKinds))
	for _, k := range knownCombinatorKinds {
		known[k] = true
	}
	maxV := int64(50)
	root := schema.NewComplexElement("r",
		schema.Properties{
			Initiator:  "[",
			Terminator: "]",
			Variables:  []schema.VariableDecl{{Name: "v", DefaultExpr: "1"}},
		},
		schema.NewSequence(schema.Properties{Separator: ","},
			schema.NewElement("n", schema.Properties{LengthBits: 8, MaxValue: &maxV, OutputValueCalc: "/r/t"}),
			schema.NewElement("t", schema.Properties{Encoding: "us-ascii", LengthBits: 8}),
			schema.NewElement("item", schema.Properties{
				LengthBits: 8,
				Occurs:     schema.Occurs{Kind: schema.OccursFixed, Count: 2},
			}),
			schema.NewChoice(schema.Properties{},
				schema.NewElement("x", schema.Properties{LengthBits: 8}),
			),
		))
	p := compileProcessor(t, root)
	var buf bytes.Buffer
	if err := p.Save(&buf); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	dec, err := zstd.NewReader(&buf)
	if err != nil {
		t.Fatalf("zstd.NewReader() error: %v", err)
	}
	defer dec.Close()
	var a artifact
	if err := gob.NewDecoder(dec).Decode(&a); err != nil {
		t.Fatalf("gob decode error: %v", err)
	}
	if len(a.RequiredKinds) == 0 {
		t.Fatal("artifact records no required kinds")
	}
	for _, k := range a.RequiredKinds {
		if !known[k] {
			t.Fatalf("compiled tree uses kind %q missing from the known-kind list", k)
		}
	}
}
