package dfdl

import (
	"io"
	"sort"
	"sync"

	"github.com/jacoelho/dfdl/errors"
)

// CodeGenerator emits an alternative execution target for a compiled
// format. Generator backends live outside this module and register
// themselves under a short language key.
type CodeGenerator interface {
	Language() string
	GenerateCode(w io.Writer) error
}

// GeneratorFactory builds a generator from a successful compilation.
type GeneratorFactory func(f *ProcessorFactory) (CodeGenerator, error)

var (
	codeGenMu      sync.RWMutex
	codeGenerators = map[string]GeneratorFactory{}
)

// RegisterCodeGenerator installs a generator backend for a language key.
// Registering the same key twice replaces the earlier backend.
func RegisterCodeGenerator(lang string, fn GeneratorFactory) {
	codeGenMu.Lock()
	defer codeGenMu.Unlock()
	codeGenerators[lang] = fn
}

// GeneratorFor looks up a code-generation backend by language key. An
// unrecognized key fails immediately; there is no default target.
func (f *ProcessorFactory) GeneratorFor(lang string) (CodeGenerator, error) {
	if f.IsError() {
		return nil, errors.NewUsage(errors.ErrFactoryInError,
			"factory is in error state (%d diagnostics); check IsError before requesting a generator", len(f.Diagnostics()))
	}
	codeGenMu.RLock()
	fn, ok := codeGenerators[lang]
	codeGenMu.RUnlock()
	if !ok {
		return nil, errors.NewUsage(errors.ErrUnsupportedTarget,
			"unsupported code generation target %q (registered: %v)", lang, registeredTargets())
	}
	return fn(f)
}

func registeredTargets() []string {
	codeGenMu.RLock()
	defer codeGenMu.RUnlock()
	keys := make([]string, 0, len(codeGenerators))
	for k := range codeGenerators {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
