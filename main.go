package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"github.com/mfenwick-oss/cdclsat/internal/dimacs"
	"github.com/mfenwick-oss/cdclsat/internal/sat"
)

var flagCPUProfile = flag.Bool(
	"cpuprofile",
	false,
	"save pprof CPU profile to cpuprofile",
)

var flagMemProfile = flag.Bool(
	"memprofile",
	false,
	"save pprof heap profile to memprofile",
)

var flagPrintModel = flag.Bool(
	"model",
	false,
	"print the satisfying assignment, one 'v'-prefixed DIMACS line, when SAT",
)

func run() error {
	instance, err := dimacs.Parse(os.Stdin)
	if err != nil {
		return fmt.Errorf("could not parse instance: %w", err)
	}

	s, err := instance.NewSolver(sat.DefaultOptions)
	if err != nil {
		return fmt.Errorf("could not build solver: %w", err)
	}

	fmt.Printf("c variables:  %d\n", instance.NumVars)
	fmt.Printf("c clauses:    %d\n", len(instance.Clauses))

	start := time.Now()
	status := s.Solve()
	elapsed := time.Since(start)

	fmt.Printf("c time (sec): %f\n", elapsed.Seconds())
	fmt.Printf("c conflicts:  %d\n", s.TotalConflicts)
	fmt.Printf("c decisions:  %d\n", s.TotalDecisions)

	fmt.Println(status)

	if *flagPrintModel && status == sat.Satisfiable {
		printModel(s.Model())
	}

	return nil
}

func printModel(model []bool) {
	fmt.Print("v")
	for v, val := range model {
		if val {
			fmt.Printf(" %d", v+1)
		} else {
			fmt.Printf(" -%d", v+1)
		}
	}
	fmt.Println(" 0")
}

func main() {
	flag.Parse()

	if *flagCPUProfile {
		f, err := os.Create("cpuprofile")
		if err != nil {
			log.Fatal(err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal(err)
		}
		defer pprof.StopCPUProfile()
	}

	if err := run(); err != nil {
		log.Fatal(err)
	}

	if *flagMemProfile {
		f, err := os.Create("memprofile")
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatal(err)
		}
	}
}
