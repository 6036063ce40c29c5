package cmd

import (
	"os"

	"github.com/apex/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/han-qiu/binsize"
	"github.com/han-qiu/binsize/internal/binfile"
	"github.com/han-qiu/binsize/internal/demangle"
	elfingest "github.com/han-qiu/binsize/internal/ingest/elf"
	"github.com/han-qiu/binsize/internal/program"
	"github.com/han-qiu/binsize/internal/report"
	"github.com/han-qiu/binsize/internal/vtable"
)

func init() {
	elfingest.Register()
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	binaryPath := args[0]
	var watchSymbol string
	if len(args) == 2 {
		watchSymbol = args[1]
	}

	trace := program.TraceConfig{WatchSymbol: watchSymbol, Verbose: viper.GetBool("verbose")}

	dem, err := demangle.NewProcess(viper.GetString("demangler"))
	if err != nil {
		return err
	}
	defer dem.Close()

	store := binfile.New(nil)
	f, err := store.OpenBinary(binaryPath)
	if err != nil {
		return err
	}
	defer f.Close()

	arch := vtable.Arch64
	if arch32 {
		arch = vtable.Arch32
	}

	res, err := binsize.Analyze(f, f, dem, binsize.Options{Trace: trace, Arch: arch})
	if err != nil {
		return err
	}

	if !res.Program.HasFiles() {
		log.Warn("no debug info: binary has no source files, file table will be empty")
	}

	if !res.HasEntry {
		log.Error("no entry point set; skipping reachability and weight ranking")
	} else {
		report.PrintGarbage(os.Stderr, res.Reach)
	}

	if err := report.PrintSymbolsByTransitiveWeight(os.Stdout, res.Program); err != nil {
		log.WithError(err).Warn("weight ranking unavailable")
	}
	if err := report.PrintSymbols(os.Stdout, res.Program); err != nil {
		return err
	}
	if err := report.PrintFiles(os.Stdout, res.Program); err != nil {
		return err
	}

	if !res.HasEntry {
		return nil
	}

	dot, err := store.CreateDotFile(viper.GetString("dot"))
	if err != nil {
		return err
	}
	defer dot.Close()
	return report.WriteDotGraph(dot, res.Program, viper.GetUint64("min-max-weight"))
}
