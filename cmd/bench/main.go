package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/aretw0/hdx"
	"github.com/aretw0/hdx/pkg/core"
)

func main() {
	customers := flag.Int("customers", 100, "Number of customers to generate")
	fanout := flag.Int("fanout", 5, "Children generated per parent at every level")
	keep := flag.Bool("keep", false, "Keep the benchmark data directory after running")
	flag.Parse()

	benchDir, err := os.MkdirTemp("", "hdx_bench_")
	if err != nil {
		panic(err)
	}
	defer func() {
		if !*keep {
			os.RemoveAll(benchDir)
		} else {
			fmt.Printf("Keeping bench dir: %s\n", benchDir)
		}
	}()

	fmt.Printf("Generating %d customers (fanout %d) in %s...\n", *customers, *fanout, benchDir)
	startGen := time.Now()
	total, err := generate(benchDir, *customers, *fanout)
	if err != nil {
		panic(err)
	}
	fmt.Printf("Generation took: %v (%s records)\n", time.Since(startGen), humanize.Comma(int64(total)))

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	svc, err := hdx.Open(benchDir,
		hdx.WithLogger(logger),
		hdx.WithMustExist(true),
		hdx.WithBackups(false),
	)
	if err != nil {
		panic(err)
	}

	ctx := context.TODO()

	fmt.Println("Running List customers (with child counts)...")
	startList := time.Now()
	list, err := svc.List(ctx, hdx.Customers, false)
	if err != nil {
		panic(err)
	}
	listDuration := time.Since(startList)
	fmt.Printf("List Result: %v (Items: %d)\n", listDuration, len(list))

	fmt.Println("Running List freight requests (with name lookups)...")
	startFreight := time.Now()
	freight, err := svc.List(ctx, hdx.FreightRequests, false)
	if err != nil {
		panic(err)
	}
	freightDuration := time.Since(startFreight)
	fmt.Printf("List Result: %v (Items: %d)\n", freightDuration, len(freight))

	fmt.Println("Running cascade delete of customer 1...")
	startDelete := time.Now()
	report, err := svc.Delete(ctx, hdx.Customers, 1)
	if err != nil {
		panic(err)
	}
	deleteDuration := time.Since(startDelete)
	fmt.Printf("Delete Result: %v (%s)\n", deleteDuration, report.Message())

	fmt.Printf("--------------------------------------------------\n")
	fmt.Printf("Benchmark Result (%s records):\n", humanize.Comma(int64(total)))
	fmt.Printf("  List customers: %v\n", listDuration)
	fmt.Printf("  List freight:   %v\n", freightDuration)
	fmt.Printf("  Cascade delete: %v\n", deleteDuration)
	fmt.Printf("--------------------------------------------------\n")
}

// generate writes collection files directly to simulate an existing data
// directory. It returns the number of records written.
func generate(dir string, customers, fanout int) (int, error) {
	today := time.Now().Format("2006-01-02")
	data := map[core.Collection][]map[string]any{
		core.Vendors: {{"id": 1, "name": "Bench Freight", "is_deleted": false}},
	}
	var projectID, quoteID, freightID int
	for c := 1; c <= customers; c++ {
		data[core.Customers] = append(data[core.Customers], map[string]any{
			"id": c, "name": fmt.Sprintf("Customer %d", c), "status": "active",
			"created_date": today, "is_deleted": false,
		})
		for p := 0; p < fanout; p++ {
			projectID++
			data[core.Projects] = append(data[core.Projects], map[string]any{
				"id": projectID, "customer_id": c, "name": fmt.Sprintf("Project %d", projectID),
				"budget": 10000.0, "status": "planning", "is_deleted": false,
			})
			for q := 0; q < fanout; q++ {
				quoteID++
				data[core.Quotes] = append(data[core.Quotes], map[string]any{
					"id": quoteID, "project_id": projectID, "name": fmt.Sprintf("Quote %d", quoteID),
					"amount": 2500.0, "status": "active", "is_deleted": false,
				})
				for f := 0; f < fanout; f++ {
					freightID++
					data[core.FreightRequests] = append(data[core.FreightRequests], map[string]any{
						"id": freightID, "quote_id": quoteID, "vendor_id": 1,
						"name": fmt.Sprintf("Freight %d", freightID), "weight": 120.5,
						"priority": "medium", "status": "active", "is_deleted": false,
					})
				}
			}
		}
	}

	total := 0
	for c, records := range data {
		raw, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return 0, err
		}
		if err := os.WriteFile(filepath.Join(dir, c.Filename()), raw, 0644); err != nil {
			return 0, err
		}
		total += len(records)
	}
	return total, nil
}
