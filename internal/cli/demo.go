package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/dynkit/retype/internal/config"
	"github.com/dynkit/retype/internal/object"
	"github.com/dynkit/retype/internal/trace"
)

func init() {
	rootCmd.AddCommand(demoCmd)
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Walk one factory result through capture, upgrade and migration",
	Long: "Builds a base class with a factory that constructs the base type,\n" +
		"derives a covariant subclass, and calls the factory through a\n" +
		"subclass instance. Every protocol event is narrated on stderr:\n" +
		"human-readable on a terminal, JSON otherwise.",
	RunE: runDemo,
}

func runDemo(cmd *cobra.Command, args []string) error {
	var handler slog.Handler
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		handler = trace.NewConsoleHandler(os.Stderr, slog.LevelDebug)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	rt := object.NewRuntime(object.WithHook(trace.NewSlogHook(handler)))

	base, err := rt.NewClass("Budget", nil, object.ClassSpec{Init: demoInit(1, "amount")})
	if err != nil {
		return err
	}
	base.SetClassAttr("replan", object.NewClassMethod("replan", object.NewFunction("replan",
		func(args []object.Object, kwargs object.Kwargs) (object.Object, error) {
			return base.Call([]object.Object{&object.Integer{Value: 900}}, nil)
		})))

	sub, err := rt.Derive("Quarterly", base, object.ClassSpec{Init: demoInit(2, "quarter")})
	if err != nil {
		return err
	}

	fmt.Println("Budget declares replan(), a factory that returns Budget(900).")
	fmt.Println("Quarterly derives covariantly from Budget and adds a quarter tag.")
	fmt.Println()

	b, err := base.Call([]object.Object{&object.Integer{Value: 500}}, nil)
	if err != nil {
		return fmt.Errorf("Budget(500): %w", err)
	}
	fmt.Printf("b := Budget(500)          -> %s\n", describe(b))

	s, err := sub.Call([]object.Object{b, &object.Str{Value: "Q3"}}, nil)
	if err != nil {
		return fmt.Errorf("Quarterly(b, Q3): %w", err)
	}
	fmt.Printf("s := Quarterly(b, \"Q3\")   -> %s\n", describe(s))

	made, err := call(s, "replan")
	if err != nil {
		return fmt.Errorf("s.replan(): %w", err)
	}
	fmt.Printf("made := s.replan()        -> %s\n", describe(made))
	fmt.Println()

	if made.Class() != sub {
		return fmt.Errorf("expected a Quarterly, factory returned a %s", made.Class().Name)
	}
	fmt.Println("The factory body built a Budget; the wrapper replayed the captured")
	fmt.Println("construction record and handed back a fully formed Quarterly.")
	return nil
}

// demoInit stores the positional arguments after offset under the
// given attribute names. Offset 1 skips the receiver, offset 2 also
// skips the covariant value slot.
func demoInit(offset int, names ...string) *object.Method {
	fn := object.NewFunction(config.InitMethodName,
		func(args []object.Object, kwargs object.Kwargs) (object.Object, error) {
			self, ok := args[0].(object.AttrSetter)
			if !ok {
				return nil, fmt.Errorf("receiver %s does not hold attributes", args[0].Type())
			}
			for i, name := range names {
				if offset+i >= len(args) {
					break
				}
				if err := self.SetAttr(name, args[offset+i]); err != nil {
					return nil, err
				}
			}
			return object.NIL, nil
		})
	return object.NewMethod(config.InitMethodName, fn)
}

func call(recv object.Object, name string) (object.Object, error) {
	v, err := object.Attr(recv, name)
	if err != nil {
		return nil, err
	}
	caller, ok := v.(object.Caller)
	if !ok {
		return nil, fmt.Errorf("%s is not callable", name)
	}
	return caller.Call(nil, nil)
}

// describe renders an instance as Class{attr: value, ...} for the
// demo transcript.
func describe(obj object.Object) string {
	inst, ok := obj.(*object.Instance)
	if !ok {
		return obj.Inspect()
	}
	out := inst.Class().Name + "{"
	first := true
	for _, name := range inst.OwnAttrNames() {
		if name == config.CapturedArgsAttr || name == config.CapturedKwargsAttr {
			continue
		}
		v, ok := inst.GetOwn(name)
		if !ok {
			continue
		}
		if !first {
			out += ", "
		}
		out += name + ": " + v.Inspect()
		first = false
	}
	return out + "}"
}
