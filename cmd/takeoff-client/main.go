package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	logpkg "tower-takeoff/common/logger"
	"tower-takeoff/internal/client"
	"tower-takeoff/internal/domain"
	"tower-takeoff/internal/takeoff"

	"go.uber.org/zap"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "tower-takeoff base URL")
	file := flag.String("file", "request.yaml", "YAML request file (filters + parts)")
	asJSON := flag.Bool("json", false, "print the raw JSON response")
	timeout := flag.Duration("timeout", 30*time.Second, "request timeout")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := "warn"
	if *verbose {
		level = "debug"
	}
	logger, err := logpkg.NewLogger(level, "console", "takeoff-client")
	if err != nil {
		logger = zap.NewNop()
	}
	defer logger.Sync()

	req, err := client.LoadRequestFile(*file)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	c := client.NewTakeoffClient(*server, *timeout, logger)
	resp, err := c.Calculate(context.Background(), req)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(resp)
		return
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PARTE_DIVISION\tCANTIDAD_X_TORRE\tCANTIDAD_CALCULADA\tPESO_TOTAL")
	for _, row := range resp.Results {
		fmt.Fprintf(tw, "%s\t%s\t%g\t%g\n",
			domain.ToText(row[domain.ColPartDivision]),
			domain.ToText(row[domain.ColQuantityPerTower]),
			takeoff.ToNumberOrZero(row[domain.ColCalculatedQuantity]),
			takeoff.ToNumberOrZero(row[domain.ColTotalWeight]),
		)
	}
	_ = tw.Flush()
	fmt.Printf("\n%d rows, total pieces %g, total weight %g\n", resp.Count, resp.Totals.TotalPieces, resp.Totals.TotalWeight)
}
