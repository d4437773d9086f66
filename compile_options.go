package dfdl

// CompileOption configures one compilation.
type CompileOption interface{ apply(*compileOptions) }

// RunOption configures one parse or unparse run.
type RunOption interface{ apply(*runOptions) }

type compileOptions struct {
	rootSpec       RootSpec
	externalVars   map[string]int64
	validateSchema bool
}

type runOptions struct {
	retain          bool
	fatalValidation bool
}

type compileOptionFunc func(*compileOptions)

func (f compileOptionFunc) apply(cfg *compileOptions) {
	if cfg == nil {
		return
	}
	f(cfg)
}

type runOptionFunc func(*runOptions)

func (f runOptionFunc) apply(cfg *runOptions) {
	if cfg == nil {
		return
	}
	f(cfg)
}

// WithRootSpec selects an explicit root element instead of the schema default.
func WithRootSpec(name, namespace string) CompileOption {
	return compileOptionFunc(func(cfg *compileOptions) {
		cfg.rootSpec = RootSpec{Name: name, Namespace: namespace}
	})
}

// WithExternalVariable binds an external variable for all runs of the
// compiled processor.
func WithExternalVariable(name string, value int64) CompileOption {
	return compileOptionFunc(func(cfg *compileOptions) {
		if cfg.externalVars == nil {
			cfg.externalVars = make(map[string]int64)
		}
		cfg.externalVars[name] = value
	})
}

// WithSchemaValidation enables self-validation of the schema term tree
// beyond the checks descriptor building always performs.
func WithSchemaValidation(v bool) CompileOption {
	return compileOptionFunc(func(cfg *compileOptions) {
		cfg.validateSchema = v
	})
}

// WithRetainInfoset signals whether the caller needs the data tree after
// the run. When false the engine may release nodes once they are no
// longer needed for deferred evaluation. Default true.
func WithRetainInfoset(v bool) RunOption {
	return runOptionFunc(func(cfg *runOptions) {
		cfg.retain = v
	})
}

// WithFatalValidation makes validation failures abort the run instead of
// accumulating as non-fatal diagnostics.
func WithFatalValidation(v bool) RunOption {
	return runOptionFunc(func(cfg *runOptions) {
		cfg.fatalValidation = v
	})
}

func applyCompileOptions(opts []CompileOption) compileOptions {
	var cfg compileOptions
	for _, opt := range opts {
		if opt != nil {
			opt.apply(&cfg)
		}
	}
	return cfg
}

func applyRunOptions(opts []RunOption) runOptions {
	cfg := runOptions{retain: true}
	for _, opt := range opts {
		if opt != nil {
			opt.apply(&cfg)
		}
	}
	return cfg
}
