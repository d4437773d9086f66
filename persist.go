package dfdl

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/jacoelho/dfdl/errors"
	"github.com/jacoelho/dfdl/internal/combinator"
	"github.com/jacoelho/dfdl/schema"
)

// artifactVersion guards the persisted layout. The layout itself is an
// opaque contract: write once, read back to an equivalent processor.
const artifactVersion = 1

// knownCombinatorKinds lists every combinator kind this runtime can
// rebuild. Reload reports it when an artifact requires a kind that is
// not available here.
var knownCombinatorKinds = []string{
	"array",
	"binary-integer",
	"choice",
	"deferred-value",
	"delimiter-text-alignment",
	"element",
	"initiator-region",
	"mandatory-alignment",
	"sequence",
	"separator-region",
	"terminator-region",
	"text",
	"variable-scope",
}

// artifact is the gob-encoded body of a saved processor. The schema term
// tree is persisted and recompiled on reload; compilation is
// deterministic, so the reloaded processor behaves identically.
type artifact struct {
	Version       int
	Root          *artifactTerm
	RootSpec      RootSpec
	RequiredKinds []string
	ExternalVars  map[string]int64
}

type artifactTerm struct {
	Name      string
	Namespace string
	Kind      uint8
	Props     schema.Properties
	Children  []*artifactTerm
}

// Save persists the processor as a compressed opaque artifact.
func (p *DataProcessor) Save(w io.Writer) error {
	if p == nil || p.schemaRoot == nil {
		return errors.NewUsage(errors.ErrUsage, "save of nil processor")
	}
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("save processor: %w", err)
	}
	a := artifact{
		Version:       artifactVersion,
		Root:          termToArtifact(p.schemaRoot),
		RootSpec:      p.rootSpec,
		RequiredKinds: combinator.Kinds(p.tree),
		ExternalVars:  p.externalVars,
	}
	if err := gob.NewEncoder(enc).Encode(&a); err != nil {
		enc.Close()
		return fmt.Errorf("save processor: %w", err)
	}
	return enc.Close()
}

// ReloadProcessor reads back a processor saved with Save. Failures are
// distinguished by cause: a corrupt archive, a decompressible archive
// with invalid structure, and an artifact requiring combinator kinds
// unavailable in this runtime (reported with the known-kind list).
func ReloadProcessor(r io.Reader) (*DataProcessor, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, errors.NewReload(errors.ErrReloadCorrupt, "open archive: %v", err)
	}
	defer dec.Close()

	body, err := io.ReadAll(dec)
	if err != nil {
		return nil, errors.NewReload(errors.ErrReloadCorrupt, "decompress archive: %v", err)
	}

	var a artifact
	if err := gob.NewDecoder(bytes.NewReader(body)).Decode(&a); err != nil {
		return nil, errors.NewReload(errors.ErrReloadInvalid, "decode artifact: %v", err)
	}
	if a.Version != artifactVersion {
		return nil, errors.NewReload(errors.ErrReloadInvalid, "artifact version %d, this runtime reads %d", a.Version, artifactVersion)
	}
	if a.Root == nil {
		return nil, errors.NewReload(errors.ErrReloadInvalid, "artifact has no schema root")
	}
	if missing := missingKinds(a.RequiredKinds); len(missing) > 0 {
		rerr := errors.NewReload(errors.ErrReloadUnknownKind, "artifact requires combinator kinds %v", missing)
		rerr.KnownKinds = knownCombinatorKinds
		return nil, rerr
	}

	root := artifactToTerm(a.Root)
	var opts []CompileOption
	if !a.RootSpec.IsZero() {
		opts = append(opts, WithRootSpec(a.RootSpec.Name, a.RootSpec.Namespace))
	}
	for name, v := range a.ExternalVars {
		opts = append(opts, WithExternalVariable(name, v))
	}
	f := NewCompiler().Compile(root, opts...)
	if f.IsError() {
		return nil, errors.NewReload(errors.ErrReloadInvalid, "artifact schema does not recompile: %v",
			errors.DiagnosticList(f.Diagnostics()))
	}
	return f.DataProcessor()
}

func missingKinds(required []string) []string {
	known := make(map[string]bool, len(knownCombinatorKinds))
	for _, k := range knownCombinatorKinds {
		known[k] = true
	}
	var missing []string
	for _, k := range required {
		if !known[k] {
			missing = append(missing, k)
		}
	}
	return missing
}

func termToArtifact(t *schema.Term) *artifactTerm {
	a := &artifactTerm{
		Name:      t.Name,
		Namespace: t.Namespace,
		Kind:      uint8(t.Kind),
		Props:     t.Props,
	}
	for _, c := range t.Children() {
		a.Children = append(a.Children, termToArtifact(c))
	}
	return a
}

func artifactToTerm(a *artifactTerm) *schema.Term {
	children := make([]*schema.Term, 0, len(a.Children))
	for _, c := range a.Children {
		children = append(children, artifactToTerm(c))
	}
	switch schema.TermKind(a.Kind) {
	case schema.SequenceTerm:
		return schema.NewSequence(a.Props, children...)
	case schema.ChoiceTerm:
		return schema.NewChoice(a.Props, children...)
	default:
		if len(children) == 1 {
			t := schema.NewComplexElement(a.Name, a.Props, children[0])
			t.Namespace = a.Namespace
			return t
		}
		t := schema.NewElement(a.Name, a.Props)
		t.Namespace = a.Namespace
		return t
	}
}
