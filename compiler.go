package dfdl

import (
	"sync"

	"github.com/jacoelho/dfdl/errors"
	"github.com/jacoelho/dfdl/internal/grammar"
	"github.com/jacoelho/dfdl/internal/runtime"
	"github.com/jacoelho/dfdl/schema"
)

// Compiler compiles schema term trees into processor factories. A single
// Compiler may be shared: concurrent Compile calls serialize on the
// compiler's mutex because descriptor preparation mutates the shared
// prepared-schema cache. Compiled artifacts need no locking afterwards.
type Compiler struct {
	mu       sync.Mutex
	prepared map[*schema.Term]*preparedSchema
}

// preparedSchema caches the immutable outcome of descriptor building for
// one schema identity.
type preparedSchema struct {
	descs *runtime.Descriptors
	diags []errors.Diagnostic
}

// NewCompiler returns an empty compiler.
func NewCompiler() *Compiler {
	return &Compiler{prepared: make(map[*schema.Term]*preparedSchema)}
}

// Compile runs the compilation pipeline for root. It never fails
// directly: diagnostics accumulate on the returned factory, and callers
// must check IsError before requesting a processor or generator.
func (c *Compiler) Compile(root *schema.Term, opts ...CompileOption) *ProcessorFactory {
	cfg := applyCompileOptions(opts)

	f := &ProcessorFactory{
		rootSpec:     cfg.rootSpec,
		externalVars: cfg.externalVars,
	}

	if root == nil {
		f.diags = append(f.diags, errors.NewDiagnostic(errors.ErrSchemaDefinition, "nil schema root", ""))
		return f
	}

	f.rootSpec = resolveRootSpec(cfg.rootSpec, root)
	if f.rootSpec.Name != root.Name || f.rootSpec.Namespace != root.Namespace {
		f.diags = append(f.diags, errors.NewDiagnosticf(errors.ErrSchemaDefinition, "/"+root.Name,
			"root spec {%s}%s does not match schema root {%s}%s",
			f.rootSpec.Namespace, f.rootSpec.Name, root.Namespace, root.Name))
		return f
	}

	prep := c.prepare(root)
	f.diags = append(f.diags, prep.diags...)
	if cfg.validateSchema {
		f.diags = append(f.diags, validateSchemaTree(root)...)
	}
	if len(f.diags) > 0 {
		return f
	}

	tree, err := grammar.New(prep.descs).Compile()
	if err != nil {
		f.diags = append(f.diags, errors.NewDiagnosticf(errors.ErrSchemaDefinition, "/"+root.Name, "%v", err))
		return f
	}

	f.descs = prep.descs
	f.tree = tree
	f.schemaRoot = root
	return f
}

// prepare builds or reuses the cached descriptor set for root. The
// caller-visible contract is why the mutex exists: descriptor building
// populates the shared cache.
func (c *Compiler) prepare(root *schema.Term) *preparedSchema {
	c.mu.Lock()
	defer c.mu.Unlock()
	if prep, ok := c.prepared[root]; ok {
		return prep
	}
	descs, diags := runtime.Build(root)
	prep := &preparedSchema{descs: descs, diags: diags}
	c.prepared[root] = prep
	return prep
}

// resolveRootSpec applies the schema default when the caller gave none.
func resolveRootSpec(explicit RootSpec, root *schema.Term) RootSpec {
	if explicit.IsZero() {
		return RootSpec{Name: root.Name, Namespace: root.Namespace}
	}
	return explicit
}

// validateSchemaTree performs optional structural self-validation of the
// term tree: parent links and group shapes. Descriptor building already
// checks property combinations.
func validateSchemaTree(root *schema.Term) []errors.Diagnostic {
	var diags []errors.Diagnostic
	var walk func(t *schema.Term, path string)
	walk = func(t *schema.Term, path string) {
		for _, child := range t.Children() {
			if child.Parent() != t {
				diags = append(diags, errors.NewDiagnosticf(errors.ErrSchemaDefinition, path,
					"child %q has a broken parent link", child.Name))
			}
			childPath := path
			if child.Name != "" {
				childPath = path + "/" + child.Name
			}
			walk(child, childPath)
		}
		if t.Kind == schema.ElementTerm && len(t.Children()) > 1 {
			diags = append(diags, errors.NewDiagnosticf(errors.ErrSchemaDefinition, path,
				"element %q has %d content groups, want at most 1", t.Name, len(t.Children())))
		}
	}
	walk(root, "/"+root.Name)
	return diags
}
