// Command cli runs a canned experiment protocol against a fresh
// simulation session and prints the observations as JSON. Useful for
// smoke tests and for generating fixture data.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"strconv"
	"strings"

	"cellvm/domain/core"
	"cellvm/internal/config"
	"cellvm/internal/testkit"
)

func main() {
	seed := flag.Int64("seed", 42, "master seed for the run")
	protocol := flag.String("protocol", "dose_response", "protocol: dose_response or growth_curve")
	line := flag.String("line", string(config.LineHEK293), "cell line id")
	compound := flag.String("compound", string(config.CompoundStaurosporine), "compound id (dose_response only)")
	doses := flag.String("doses", "0.003,0.01,0.03,0.1", "comma-separated doses in uM (dose_response only)")
	hours := flag.Float64("hours", 48, "exposure window or sampling interval in hours")
	flag.Parse()

	kit, err := testkit.New(*seed)
	if err != nil {
		log.Fatalf("session: %v", err)
	}

	plate := core.PlateID("plate-1")
	var p testkit.Protocol
	switch *protocol {
	case "dose_response":
		ladder, err := parseDoses(*doses)
		if err != nil {
			log.Fatalf("doses: %v", err)
		}
		p = testkit.DoseResponse(plate, core.CellLineID(*line), core.CompoundID(*compound), ladder, *hours)
	case "growth_curve":
		p = testkit.GrowthCurve(plate, core.CellLineID(*line), 6, *hours)
	default:
		log.Fatalf("unknown protocol %q", *protocol)
	}

	res, err := kit.Run(p)
	if err != nil {
		log.Fatalf("run %s: %v", p.Name, err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res.Observations); err != nil {
		log.Fatalf("encode: %v", err)
	}
}

func parseDoses(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		d, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
