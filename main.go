/*
ashaderc compiles annotated HLSL into platform-specific shaders plus a
.pipeline metadata file per technique describing the resource layout the
shaders expect.
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spaghettifunk/ashaderc/shaderc/build"
	"github.com/spaghettifunk/ashaderc/shaderc/compiler"
	"github.com/spaghettifunk/ashaderc/shaderc/config"
	"github.com/spaghettifunk/ashaderc/shaderc/core"
	"github.com/spaghettifunk/ashaderc/shaderc/target"
	"github.com/spaghettifunk/ashaderc/shaderc/watch"
)

const usage = `Usage: ashaderc [options] <input file name>

Compiles annotated HLSL shaders for multiple different targets.

Options:

  -O <path> - Folder to store output files in. Default is the current
    working directory.

  -t <target> - Generate shaders for the given target. May be repeated to
    generate shaders for several targets in one run.

  -h <path> - Path (relative to the output folder) for the generated
    header file with descriptor binding and set IDs. If not specified, no
    header file will be generated.

  -n <identifier> - Namespace for the generated header file. If not
    specified, the global namespace is used.

  -c <path> - TOML build manifest. Explicit flags override manifest values.

  -w - Keep running and rebuild whenever the input file changes.

  -v - Verbose logging.
`

type targetList []string

func (t *targetList) String() string     { return strings.Join(*t, ",") }
func (t *targetList) Set(v string) error { *t = append(*t, v); return nil }

func main() {
	if len(os.Args) <= 1 {
		fmt.Print(usage)
		fmt.Printf("\nAccepted targets: %s\n", strings.Join(target.DefaultRegistry().Names(), ", "))
		return
	}

	var targets targetList
	outDir := flag.String("O", ".", "output folder")
	headerPath := flag.String("h", "", "binding header path, relative to the output folder")
	namespace := flag.String("n", "", "binding header namespace")
	manifest := flag.String("c", "", "TOML build manifest")
	watchMode := flag.Bool("w", false, "rebuild on input change")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Var(&targets, "t", "output target, may be repeated")
	flag.Parse()
	core.SetVerbose(*verbose)

	cfg := config.Default()
	if *manifest != "" {
		loaded, err := config.Load(*manifest)
		if err != nil {
			core.LogFatal(err.Error())
		}
		cfg = loaded
	}

	explicit := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
	if explicit["O"] {
		cfg.OutputDir = *outDir
	}
	if explicit["h"] {
		cfg.HeaderPath = *headerPath
	}
	if explicit["n"] {
		cfg.HeaderNamespace = *namespace
	}
	if explicit["w"] {
		cfg.Watch = *watchMode
	}
	if len(targets) > 0 {
		cfg.Targets = targets
	}
	if flag.Arg(0) != "" {
		cfg.Input = flag.Arg(0)
	}
	if err := cfg.Validate(); err != nil {
		core.LogFatal(err.Error())
	}

	builder := &build.Builder{
		Compiler:        compiler.NewGlslc(),
		Cross:           compiler.NewSpirvCross(),
		Registry:        target.DefaultRegistry(),
		OutputDir:       cfg.OutputDir,
		HeaderPath:      cfg.HeaderPath,
		HeaderNamespace: cfg.HeaderNamespace,
	}

	if !cfg.Watch {
		if err := builder.Run(cfg.Input, cfg.Targets); err != nil {
			core.LogFatal(err.Error())
		}
		return
	}

	watcher, err := watch.New(builder, cfg.Input, cfg.Targets)
	if err != nil {
		core.LogFatal(err.Error())
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	go func() {
		<-sigCh
		watcher.Close()
	}()

	if err := watcher.Run(); err != nil {
		core.LogFatal(err.Error())
	}
}
