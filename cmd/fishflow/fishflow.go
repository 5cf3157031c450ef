package main

import(
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/abworrall/fishflow/pkg/fishflow"
	"github.com/abworrall/fishflow/pkg/framesrc"
	"github.com/abworrall/fishflow/pkg/pipeline"
)

const version = "0.3.0"

var(
	fVerbosity int
	fInput string
	fBackground string
	fOutput string
	fInfo bool
	fVersion bool
)

func init() {
	flag.IntVar(&fVerbosity, "v", -1, "how verbose to get (0 quiet .. 4 debug); overrides the config file")
	flag.StringVar(&fInput, "i", "", "dir of input frames")
	flag.StringVar(&fBackground, "b", "", "background image")
	flag.StringVar(&fOutput, "o", "", "output sqlite file")
	flag.BoolVar(&fInfo, "info", false, "describe the input and exit")
	flag.BoolVar(&fVersion, "version", false, "print the version and exit")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [config.yaml]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
}

func main() {
	if fVersion {
		fmt.Printf("fishflow %s\n", version)
		return
	}

	cfg := fishflow.NewConfig()
	if flag.NArg() > 1 {
		flag.Usage()
		os.Exit(2)
	} else if flag.NArg() == 1 {
		var err error
		if cfg, err = fishflow.LoadConfig(flag.Arg(0)); err != nil {
			log.Fatal(err)
		}
	}

	// Override the config file with command line args, if relevant
	if fVerbosity >= 0 { cfg.Verbosity = fishflow.Verbosity(fVerbosity) }
	if fInput != "" { cfg.Input.Path = fInput }
	if fBackground != "" { cfg.Input.Background = fBackground }
	if fOutput != "" { cfg.Output.File = fOutput }

	if err := cfg.Finalize(); err != nil {
		log.Fatal(err)
	}
	if cfg.Verbosity >= fishflow.High {
		log.Printf("Final configuration:-\n\n%s\n", cfg.AsYaml())
	}

	if fInfo {
		src, err := framesrc.Open(cfg)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(src.Info())
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sum, err := pipeline.Run(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	cfg.LogAt(fishflow.Low, "fishflow done: %s\n", sum)
}
