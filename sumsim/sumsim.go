/*

Sumsim simulates multi-trait GWAS summary statistics from a
user-specified causal model: a DAG of effects between traits,
per-trait heritability, a causal-variant model and optional LD
structure with allele frequencies.

The basic usage of sumsim looks like this:

	sumsim -j 100000 -h2 0.3,0.4 -pi 0.001 -n 50000 -edge 1:2:0.45

, this will simulate two traits with trait 1 affecting trait 2.

LD blocks and allele frequencies are read from .npy files:

	sumsim -j 100000 -h2 0.3 -pi 0.001 -n 50000 -ld b1.npy -ld b2.npy -af af.npy

To see all the options run:

	sumsim -h

*/
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/op/go-logging"
	"gopkg.in/alecthomas/kingpin.v2"

	bolt "go.etcd.io/bbolt"

	"github.com/jandvik/sumsim/checkpoint"
	"github.com/jandvik/sumsim/panel"
	"github.com/jandvik/sumsim/sim"
)

// These three variables are set during the compilation.
var githash = ""
var gitbranch = ""
var buildstamp = ""
var version = fmt.Sprintf("branch: %s, revision: %s, build time: %s", gitbranch, githash, buildstamp)

// Logger settings.
var log = logging.MustGetLogger("sumsim")
var formatter = logging.MustStringFormatter(`%{message}`)

// command-line options
var (
	// application
	app = kingpin.New("sumsim", "multi-trait GWAS summary statistic simulator").Version(version)

	// dimensions and genetic architecture
	nVariants = app.Flag("j", "number of variants").Required().Int()
	h2Str     = app.Flag("h2", "per-trait heritability (comma separated)").Required().String()
	piStr     = app.Flag("pi", "causal probability (single value or one per trait)").Required().String()
	edges     = app.Flag("edge", "direct trait effect as src:dst:weight (1-based, repeatable)").Strings()

	// sample sizes
	nStr     = app.Flag("n", "GWAS sample size (single value or one per trait)").Required().String()
	overlaps = app.Flag("overlap", "shared samples between two studies as i:j:count (1-based, repeatable)").Strings()

	// LD and frequencies
	ldFiles = app.Flag("ld", "LD block matrix in .npy format (repeatable, order preserved)").ExistingFiles()
	afFile  = app.Flag("af", "allele frequency vector in .npy format").ExistingFile()

	// sampling flags
	piExact      = app.Flag("pi-exact", "fix the causal variant count to round(pi*J) per trait").Bool()
	h2Exact      = app.Flag("h2-exact", "rescale effects so realized heritability is exact").Bool()
	noPleiotropy = app.Flag("no-pleiotropy", "forbid shared causal variants between traits").Bool()
	estS         = app.Flag("est-s", "simulate standard error estimates instead of revealing true values").Bool()

	// technical
	seed = app.Flag("seed", "random generator seed, default time based").Default("-1").Int64()

	// input/output
	outF         = app.Flag("out", "write summary statistics (TSV) to a file instead of stdout").String()
	outLogF      = app.Flag("log", "write log to a file").String()
	jsonF        = app.Flag("json", "write json run summary to a file").String()
	checkpointF  = app.Flag("checkpoint", "bolt database for run records").String()
	runLabel     = app.Flag("label", "run label for the checkpoint database").Default("default").String()
	logLevel     = app.Flag("loglevel", "set loglevel "+
		"('critical', 'error', 'warning', 'notice', 'info', 'debug')").
		Default("notice").
		Enum("critical", "error", "warning", "notice", "info", "debug")
)

// run builds the settings, simulates and writes the output table.
func run() (summary *RunSummary) {
	startTime := time.Now()
	summary = &RunSummary{}

	settings, err := buildSettings()
	if err != nil {
		log.Fatal(err)
	}

	if len(*ldFiles) > 0 {
		settings.Blocks, err = panel.LoadBlocks(*ldFiles)
		if err != nil {
			log.Fatal(err)
		}
	}
	if *afFile != "" {
		settings.AF, err = panel.LoadFrequencies(*afFile)
		if err != nil {
			log.Fatal(err)
		}
	}

	res, err := sim.Simulate(settings)
	if err != nil {
		log.Fatal(err)
	}

	out := os.Stdout
	if *outF != "" {
		f, err := os.Create(*outF)
		if err != nil {
			log.Fatal("Error creating output file:", err)
		}
		defer f.Close()
		out = f
	}
	if err := writeTable(out, res); err != nil {
		log.Fatal("Error writing output:", err)
	}

	deltaT := time.Now().Sub(startTime)
	log.Noticef("Running time: %v", deltaT)

	summary.Traits = summarizeTraits(res)
	summary.RealizedH2 = res.RealizedH2
	summary.Time = deltaT.Seconds()

	if *checkpointF != "" {
		db, err := bolt.Open(*checkpointF, 0644, nil)
		if err != nil {
			log.Error("Error opening checkpoint database:", err)
			return
		}
		defer db.Close()
		rec := &checkpoint.RunRecord{
			Seed:         res.Seed,
			Variants:     *nVariants,
			Traits:       len(res.TraitNames),
			Heritability: settings.H2,
			RealizedH2:   res.RealizedH2,
			Seconds:      deltaT.Seconds(),
			Time:         time.Now(),
		}
		if err := checkpoint.NewIO(db, []byte(*runLabel)).Save(rec); err == nil {
			log.Infof("Saved run record %q to %s", *runLabel, *checkpointF)
		}
	}
	return
}

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	// logging
	logging.SetFormatter(formatter)

	var backend *logging.LogBackend
	if *outLogF != "" {
		f, err := os.OpenFile(*outLogF, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			log.Fatal("Error creating log file:", err)
		}
		defer f.Close()
		backend = logging.NewLogBackend(f, "", 0)
	} else {
		backend = logging.NewLogBackend(os.Stderr, "", 0)
	}
	logging.SetBackend(backend)

	level, err := logging.LogLevel(*logLevel)
	if err != nil {
		log.Fatal(err)
	}
	logging.SetLevel(level, "sumsim")
	logging.SetLevel(level, "sim")
	logging.SetLevel(level, "effects")
	logging.SetLevel(level, "panel")
	logging.SetLevel(level, "checkpoint")

	// print revision
	log.Info(version)

	// print commandline
	log.Info("Command line:", os.Args)

	if *seed == -1 {
		*seed = time.Now().UnixNano()
		log.Debug("Random seed from time")
	}
	log.Infof("Random seed=%v", *seed)

	summary := run()
	summary.Version = version
	summary.CommandLine = os.Args
	summary.Seed = *seed

	// output summary in json format
	if *jsonF != "" {
		j, err := json.Marshal(summary)
		if err != nil {
			log.Error(err)
		} else {
			log.Debug(string(j))
			f, err := os.Create(*jsonF)
			if err != nil {
				log.Error("Error creating json output file:", err)
			} else {
				f.Write(j)
				f.Close()
			}
		}
	}
}
