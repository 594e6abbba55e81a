package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"

	ds "github.com/wdm0006/socioprep/pkg/dataset"
	"github.com/wdm0006/socioprep/pkg/recipe"
)

// genWide builds a raw wide poverty table: every metric cell is text with
// thousands separators, and missp of them are left empty.
func genWide(provinces, regions, metrics int, years []int, missp float64, rnd *rand.Rand) *ds.Frame {
	cols := []ds.ColumnSchema{
		{Name: "Region", Type: ds.KindString, Nullable: true},
		{Name: "Province", Type: ds.KindString, Nullable: true},
	}
	for m := 0; m < metrics; m++ {
		for _, y := range years {
			cols = append(cols, ds.ColumnSchema{Name: fmt.Sprintf("Metric%d (%d)", m, y), Type: ds.KindString, Nullable: true})
		}
	}
	f := ds.NewFrame(ds.Schema{Columns: cols})
	for p := 0; p < provinces; p++ {
		f.AppendNullRow()
		_ = f.SetCell(p, "Region", fmt.Sprintf("R%02d", p%regions))
		_ = f.SetCell(p, "Province", fmt.Sprintf("P%06d", p))
		for _, cs := range cols[2:] {
			if rnd.Float64() < missp {
				continue
			}
			_ = f.SetCell(p, cs.Name, humanize.Commaf(float64(rnd.Intn(5_000_000))/100))
		}
	}
	return f
}

func main() {
	var (
		provinces = flag.Int("provinces", 50_000, "number of provinces (rows of the wide table)")
		regions   = flag.Int("regions", 17, "number of regions")
		metrics   = flag.Int("metrics", 4, "metrics per year")
		from      = flag.Int("from", recipe.DefaultFrom, "first grid year")
		to        = flag.Int("to", recipe.DefaultTo, "last grid year")
		missp     = flag.Float64("missing", 0.05, "probability of an empty metric cell")
		jsonOut   = flag.Bool("json", false, "emit JSON summary")
		seed      = flag.Int64("seed", 42, "random seed")
	)
	flag.Parse()

	years := recipe.DefaultPovertyYears
	in := genWide(*provinces, *regions, *metrics, years, *missp, rand.New(rand.NewSource(*seed)))
	p := recipe.Poverty(recipe.PovertyOptions{
		Years:  years,
		From:   *from,
		To:     *to,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	runtime.GC()
	time.Sleep(100 * time.Millisecond)

	var msBefore, msAfter runtime.MemStats
	runtime.ReadMemStats(&msBefore)
	start := time.Now()
	out, err := p.Run(context.Background(), in)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	elapsed := time.Since(start)
	runtime.ReadMemStats(&msAfter)

	rowsPerSec := float64(out.Rows()) / elapsed.Seconds()
	summary := map[string]any{
		"provinces":             *provinces,
		"grid_rows":             out.Rows(),
		"grid_cols":             out.Cols(),
		"elapsed_ms":            elapsed.Milliseconds(),
		"rows_per_sec":          rowsPerSec,
		"mem_alloc_bytes":       msAfter.Alloc,
		"mem_total_alloc_bytes": msAfter.TotalAlloc - msBefore.TotalAlloc,
		"gc_num":                msAfter.NumGC - msBefore.NumGC,
		"metrics":               *metrics,
		"missing_prob":          *missp,
	}

	if *jsonOut {
		b, _ := json.MarshalIndent(summary, "", "  ")
		fmt.Println(string(b))
		return
	}
	fmt.Printf("Provinces: %s\n", humanize.Comma(int64(*provinces)))
	fmt.Printf("Grid rows: %s\n", humanize.Comma(int64(out.Rows())))
	fmt.Printf("Elapsed: %s\n", elapsed)
	fmt.Printf("Throughput: %.0f rows/s\n", rowsPerSec)
	fmt.Printf("Current Alloc: %s\n", humanize.Bytes(msAfter.Alloc))
	fmt.Printf("Total Alloc (delta): %s\n", humanize.Bytes(msAfter.TotalAlloc-msBefore.TotalAlloc))
	fmt.Printf("GC cycles (delta): %d\n", msAfter.NumGC-msBefore.NumGC)
}
