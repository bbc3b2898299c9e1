// SPDX-License-Identifier: MPL-2.0

package command

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

type recordingLoader struct {
	loaded []string
	fail   map[string]error
}

func (l *recordingLoader) LoadPlugin(_ context.Context, name string) error {
	if err, ok := l.fail[name]; ok {
		return err
	}
	l.loaded = append(l.loaded, name)
	return nil
}

type harness struct {
	dispatcher *Dispatcher
	stdout     *bytes.Buffer
	loader     *recordingLoader
	calls      map[string]int
	last       *ParsedArguments
}

func trainArguments() []ArgumentSpec {
	return []ArgumentSpec{
		{Name: "serialization-dir", Shorthand: "s", Help: "directory for results", Required: true},
		{Name: "recover", Shorthand: "r", Action: ActionStoreTrue, Help: "recover training"},
		{Name: "batch-size", Kind: KindInt, Default: 0, Help: "batch size"},
		{Name: "shuffle", Kind: KindBool, Default: false, Help: "shuffle data"},
		{Name: "lr", Kind: KindFloat, Default: 0.1, Help: "learning rate"},
		{Name: "keys", Action: ActionAppend, Default: []string{"a"}, Help: "metric keys"},
		{Name: "ids", Kind: KindInt, Action: ActionAppend, Help: "ids"},
		{Name: "level", Kind: KindInt, Action: ActionStoreConst, Const: 2, Default: 1, Help: "raise level"},
		{Name: "quiet", Action: ActionStoreFalse, Help: "disable output"},
		{Name: "overrides", Shorthand: "o", Default: "", Help: "overrides"},
		{Name: "predictor", Help: "predictor name"},
	}
}

func newHarness(t *testing.T, handlerErr error) *harness {
	t.Helper()

	h := &harness{
		stdout: &bytes.Buffer{},
		loader: &recordingLoader{fail: map[string]error{}},
		calls:  map[string]int{},
	}
	handler := func(name string) Handler {
		return func(_ context.Context, args *ParsedArguments) error {
			h.calls[name]++
			h.last = args
			return handlerErr
		}
	}

	reg := NewRegistry()
	specs := []CommandSpec{
		{
			Name:        "configure",
			Description: "write a starter experiment",
			Arguments:   []ArgumentSpec{{Name: "model", Default: "fm", Help: "model type"}},
		},
		{
			Name:        "train",
			Description: "train a model",
			Positionals: []PositionalSpec{{Name: "param_path", Help: "experiment file"}},
			Arguments:   trainArguments(),
		},
		{
			Name:        "predict",
			Description: "predict",
			Positionals: []PositionalSpec{{Name: "archive"}, {Name: "input", Optional: true}},
			Arguments:   []ArgumentSpec{{Name: "batch-size", Kind: KindInt, Default: 1, Help: "batch size"}},
		},
	}
	for _, spec := range specs {
		spec.Handler = handler(spec.Name)
		if err := reg.Register(spec.Name, spec); err != nil {
			t.Fatalf("Register(%s) error: %v", spec.Name, err)
		}
	}

	h.dispatcher = &Dispatcher{
		Registry: reg,
		Builder:  Builder{Prog: "reclib", Version: "1.2.3", Description: "Run reclib"},
		Loader:   h.loader,
		Stdout:   h.stdout,
		Stderr:   &bytes.Buffer{},
	}
	return h
}

func (h *harness) run(args ...string) error {
	return h.dispatcher.Run(context.Background(), args)
}

func (h *harness) totalCalls() int {
	n := 0
	for _, c := range h.calls {
		n += c
	}
	return n
}

func TestDispatcher_NoCommandPrintsHelp(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	if err := h.run(); err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}
	out := h.stdout.String()
	for _, want := range []string{"reclib", "configure", "train", "predict"} {
		if !strings.Contains(out, want) {
			t.Errorf("help output missing %q:\n%s", want, out)
		}
	}
	if h.totalCalls() != 0 {
		t.Errorf("handlers called %d times, want 0", h.totalCalls())
	}
}

func TestDispatcher_CommandHelpListsFlags(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	for _, spec := range h.dispatcher.Registry.All() {
		h.stdout.Reset()
		if err := h.run(spec.Name, "--help"); err != nil {
			t.Fatalf("%s --help error = %v", spec.Name, err)
		}
		out := h.stdout.String()
		for _, arg := range spec.Arguments {
			if !strings.Contains(out, "--"+arg.Name) {
				t.Errorf("%s --help missing --%s:\n%s", spec.Name, arg.Name, out)
			}
		}
		hasInclude := strings.Contains(out, "--"+IncludePackageFlag)
		if wantInclude := spec.Name != DefaultConfigurationCommand; hasInclude != wantInclude {
			t.Errorf("%s --help lists --%s = %v, want %v", spec.Name, IncludePackageFlag, hasInclude, wantInclude)
		}
	}
	if h.totalCalls() != 0 {
		t.Errorf("handlers called %d times during --help", h.totalCalls())
	}
}

func TestDispatcher_HelpDefaultAnnotations(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	if err := h.run("train", "--help"); err != nil {
		t.Fatalf("train --help error = %v", err)
	}
	out := h.stdout.String()

	for _, want := range []string{
		"batch size (default = 0)",
		"shuffle data (default = False)",
		"learning rate (default = 0.1)",
		"metric keys (default = [a])",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("help missing %q:\n%s", want, out)
		}
	}
	for _, unwanted := range []string{
		"recover training (default",
		"raise level (default",
		"disable output (default",
		"overrides (default",
		"predictor name (default",
		"(default 0.1)",
		"(default [a])",
	} {
		if strings.Contains(out, unwanted) {
			t.Errorf("help unexpectedly contains %q:\n%s", unwanted, out)
		}
	}
}

func TestDispatcher_Version(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	if err := h.run("--version"); err != nil {
		t.Fatalf("--version error = %v", err)
	}
	if got := h.stdout.String(); got != "reclib 1.2.3\n" {
		t.Errorf("--version output = %q, want %q", got, "reclib 1.2.3\n")
	}
}

func TestDispatcher_ResolvesDefaults(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	if err := h.run("train", "exp.cue", "-s", "out"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if h.calls["train"] != 1 {
		t.Fatalf("train handler calls = %d, want 1", h.calls["train"])
	}

	args := h.last
	if name, ok := args.Command(); !ok || name != "train" {
		t.Errorf("Command() = %q, %v", name, ok)
	}
	if args.Arg(0) != "exp.cue" {
		t.Errorf("Arg(0) = %q", args.Arg(0))
	}
	if args.String("serialization-dir") != "out" {
		t.Errorf("serialization-dir = %q", args.String("serialization-dir"))
	}
	if args.Bool("recover") {
		t.Error("recover should default to false")
	}
	if !args.Bool("quiet") {
		t.Error("store_false flag should default to true")
	}
	if args.Int("batch-size") != 0 || !args.Has("batch-size") {
		t.Errorf("batch-size = %d (has %v), want 0 present", args.Int("batch-size"), args.Has("batch-size"))
	}
	if args.Float("lr") != 0.1 {
		t.Errorf("lr = %v", args.Float("lr"))
	}
	if got := args.Strings("keys"); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("keys = %v", got)
	}
	if args.Int("level") != 1 {
		t.Errorf("level = %d, want default 1", args.Int("level"))
	}
	if args.Has("predictor") {
		t.Error("predictor has nil default and should be absent")
	}
	if args.Has("ids") {
		t.Error("ids has nil default and should be absent")
	}
	if pkgs := args.IncludePackages(); pkgs == nil || len(pkgs) != 0 {
		t.Errorf("IncludePackages() = %#v, want empty non-nil", pkgs)
	}
}

func TestDispatcher_ResolvesSuppliedValues(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	err := h.run("train", "exp.cue",
		"--serialization-dir", "out",
		"-r",
		"--batch-size", "8",
		"--shuffle",
		"--lr", "0.5",
		"--keys", "x", "--keys", "y",
		"--ids", "3", "--ids", "4",
		"--level",
		"--quiet",
		"--predictor", "ranker",
	)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	args := h.last
	if !args.Bool("recover") || !args.Bool("shuffle") {
		t.Error("switches not set")
	}
	if args.Bool("quiet") {
		t.Error("store_false flag should be false when supplied")
	}
	if args.Int("batch-size") != 8 || args.Float("lr") != 0.5 {
		t.Errorf("batch-size/lr = %d/%v", args.Int("batch-size"), args.Float("lr"))
	}
	if got := args.Strings("keys"); !reflect.DeepEqual(got, []string{"x", "y"}) {
		t.Errorf("keys = %v", got)
	}
	if got := args.Ints("ids"); !reflect.DeepEqual(got, []int{3, 4}) {
		t.Errorf("ids = %v", got)
	}
	if args.Int("level") != 2 {
		t.Errorf("level = %d, want const 2", args.Int("level"))
	}
	if args.String("predictor") != "ranker" {
		t.Errorf("predictor = %q", args.String("predictor"))
	}
}

func TestDispatcher_LoadsPluginsInOrderBeforeHandler(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	var loadedAtHandler []string
	spec, _ := h.dispatcher.Registry.Lookup("predict")
	spec.Handler = func(context.Context, *ParsedArguments) error {
		loadedAtHandler = append([]string{}, h.loader.loaded...)
		return nil
	}
	_ = h.dispatcher.Registry.Register("predict", spec)

	if err := h.run("predict", "model.tar", "--include-package", "my.models", "--include-package", "my.readers"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := []string{"my.models", "my.readers"}
	if !reflect.DeepEqual(loadedAtHandler, want) {
		t.Errorf("plugins loaded before handler = %v, want %v", loadedAtHandler, want)
	}
}

func TestDispatcher_PluginFailureIsFatal(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	cause := errors.New("no such module")
	h.loader.fail["does.not.exist"] = cause

	err := h.run("predict", "model.tar", "--include-package", "first", "--include-package", "does.not.exist", "--include-package", "never")

	var loadErr *PluginLoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("Run() error = %v, want *PluginLoadError", err)
	}
	if loadErr.Name != "does.not.exist" || !errors.Is(err, cause) || !errors.Is(err, ErrPluginLoad) {
		t.Errorf("PluginLoadError = %+v", loadErr)
	}
	if h.totalCalls() != 0 {
		t.Error("handler ran after a plugin failure")
	}
	if !reflect.DeepEqual(h.loader.loaded, []string{"first"}) {
		t.Errorf("loaded = %v, want only the plugins before the failure", h.loader.loaded)
	}
}

func TestDispatcher_PluginsWithoutLoader(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	h.dispatcher.Loader = nil

	if err := h.run("predict", "model.tar"); err != nil {
		t.Fatalf("Run() without plugins error = %v", err)
	}
	err := h.run("predict", "model.tar", "--include-package", "x")
	if !errors.Is(err, ErrNoPluginLoader) {
		t.Errorf("Run() error = %v, want ErrNoPluginLoader", err)
	}
	if h.calls["predict"] != 1 {
		t.Errorf("predict calls = %d, want 1", h.calls["predict"])
	}
}

func TestDispatcher_HandlerErrorPropagatesUnwrapped(t *testing.T) {
	t.Parallel()

	handlerErr := errors.New("training diverged")
	h := newHarness(t, handlerErr)

	err := h.run("train", "exp.cue", "-s", "out")
	if err != handlerErr { //nolint:errorlint // identity is the point
		t.Errorf("Run() error = %v, want the handler's error unchanged", err)
	}
}

func TestDispatcher_UsageErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{"unknown command", []string{"bogus"}},
		{"unknown root flag", []string{"--bogus"}},
		{"missing required flag", []string{"train", "exp.cue"}},
		{"missing positional", []string{"train", "-s", "out"}},
		{"too many positionals", []string{"predict", "a", "b", "c"}},
		{"bad int", []string{"predict", "a", "--batch-size", "many"}},
		{"configure has no include-package", []string{"configure", "--include-package", "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newHarness(t, nil)
			err := h.run(tt.args...)
			if !errors.Is(err, ErrUsage) {
				t.Fatalf("Run(%v) error = %v, want usage error", tt.args, err)
			}
			if h.totalCalls() != 0 {
				t.Error("handler ran after a usage error")
			}
			if len(h.loader.loaded) != 0 {
				t.Error("plugins loaded after a usage error")
			}
		})
	}
}

func TestDispatcher_FreshContainersPerRun(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	if err := h.run("train", "exp.cue", "-s", "out", "--include-package", "p1", "--keys", "z"); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	first := h.last
	keys := first.Strings("keys")
	keys[0] = "mutated"

	if err := h.run("train", "exp.cue", "-s", "out"); err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	second := h.last
	if len(second.IncludePackages()) != 0 {
		t.Errorf("include packages leaked across runs: %v", second.IncludePackages())
	}
	if got := second.Strings("keys"); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("keys default = %v, want [a]", got)
	}
	if got := first.Strings("keys"); got[0] != "z" {
		t.Errorf("Strings() returned shared storage: %v", got)
	}
}

func TestDispatcher_CustomConfigurationCommand(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	h.dispatcher.Builder.ConfigurationCommand = "predict"

	if err := h.run("configure", "--include-package", "x"); err != nil {
		t.Fatalf("configure with include-package error = %v", err)
	}
	if err := h.run("predict", "a", "--include-package", "x"); !errors.Is(err, ErrUsage) {
		t.Errorf("predict --include-package error = %v, want usage error", err)
	}
}
