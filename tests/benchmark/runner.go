// Copyright (c) 2026 Khaled Abbas
//
// This source code is licensed under the Business Source License 1.1.
//
// Change Date: 4 years after the first public release of this version.
// Change License: MIT
//
// On the Change Date, this version of the code automatically converts
// to the MIT License. Prior to that date, use is subject to the
// Additional Use Grant. See the LICENSE file for details.

package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// statusPayload matches the structure from server.go
type statusPayload struct {
	ID             string         `json:"id"`
	Uptime         string         `json:"uptime"`
	TasksProcessed int            `json:"tasks_processed"`
	TasksSucceeded int            `json:"tasks_succeeded"`
	TasksFailed    int            `json:"tasks_failed"`
	CacheHits      int            `json:"cache_hits"`
	TaskCounts     map[string]int `json:"task_counts"`
}

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

func main() {
	suite := flag.String("suite", "", "Benchmark suite to run (real_estate, gov, mixed)")
	apiHost := flag.String("api_host", "localhost", "Extraction API host")
	apiPort := flag.String("api_port", "8080", "Extraction API port")
	count := flag.Int("count", 20, "Number of extraction tasks to submit")
	flag.Parse()

	if *suite == "" {
		fmt.Printf("%sPlease specify a suite using --suite=[real_estate|gov|mixed]%s\n", colorRed, colorReset)
		os.Exit(1)
	}

	// Load API config from .env or defaults
	_ = godotenv.Load("../../.env")
	if p := os.Getenv("API_PORT"); p != "" && *apiPort == "8080" {
		*apiPort = p
	}

	docs := scenarioDocs(*suite)
	if docs == nil {
		fmt.Printf("%sUnknown suite %q%s\n", colorRed, *suite, colorReset)
		os.Exit(1)
	}

	fmt.Printf("\n%s%s >> EXTRACTION BENCHMARK SUITE: %s <<%s\n", colorCyan, colorBold, *suite, colorReset)

	baseURL := fmt.Sprintf("http://%s:%s", *apiHost, *apiPort)

	initial, err := getStatus(baseURL)
	if err != nil {
		fmt.Printf("%s[WARN]%s Could not get initial stats: %v. Metrics might be absolute.\n", colorYellow, colorReset, err)
	}

	submitted := 0
	for i := 0; i < *count; i++ {
		doc := docs[i%len(docs)]
		if err := submitTask(baseURL, doc.filename, doc.mode); err != nil {
			fmt.Printf("%s[ERR]%s Failed to submit %s: %v\n", colorRed, colorReset, doc.filename, err)
			continue
		}
		submitted++
	}
	fmt.Printf("%s[OK]%s %d extraction tasks submitted.\n\n", colorGreen, colorReset, submitted)

	startTime := time.Now()
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	fmt.Printf("%s%-10s %-12s %-10s %-10s %-10s%s\n", colorGray+colorBold, "ELAPSED", "SUCCEEDED", "FAILED", "RUNNING", "PENDING", colorReset)
	fmt.Println(colorGray + "------------------------------------------------------------" + colorReset)

	for range ticker.C {
		stats, err := getStatus(baseURL)

		elapsed := time.Since(startTime).Round(time.Second).String()

		if err != nil {
			fmt.Printf("\r%-10s %s%-42s%s",
				elapsed,
				colorRed, "Error: Connection Refused (Retrying...)", colorReset,
			)
			continue
		}

		deltaSucceeded := stats.TasksSucceeded - initial.TasksSucceeded
		deltaFailed := stats.TasksFailed - initial.TasksFailed

		statusColor := colorGreen
		if deltaFailed > 0 {
			statusColor = colorRed
		}

		fmt.Printf("\r%-10s %s%-12d%s %s%-10d%s %s%-10d%s %-10d",
			elapsed,
			colorGreen, deltaSucceeded, colorReset,
			statusColor, deltaFailed, colorReset,
			colorYellow, stats.TaskCounts["running"], colorReset,
			stats.TaskCounts["pending"],
		)

		if stats.TaskCounts["running"] == 0 && stats.TaskCounts["pending"] == 0 && deltaSucceeded+deltaFailed > 0 {
			fmt.Printf("\n%s------------------------------------------------------------%s\n", colorGray, colorReset)
			fmt.Printf("\n%s%s Benchmark Completed Successfully! %s%s\n", colorGreen, colorBold, "✓", colorReset)
			printReport(stats, initial, time.Since(startTime))
			break
		}
	}
}

type scenarioDoc struct {
	filename string
	mode     string
}

func scenarioDocs(suite string) []scenarioDoc {
	switch suite {
	case "real_estate":
		return []scenarioDoc{
			{"purchase_agreement.pdf", "real_estate"},
			{"helena_listing.pdf", "real_estate"},
		}
	case "gov":
		return []scenarioDoc{
			{"foia_request.pdf", "gov"},
			{"records_request.pdf", "gov"},
		}
	case "mixed":
		return []scenarioDoc{
			{"purchase_agreement.pdf", "real_estate"},
			{"foia_request.pdf", "gov"},
		}
	}
	return nil
}

func submitTask(baseURL, filename, mode string) error {
	body, _ := json.Marshal(map[string]string{"filename": filename, "mode": mode})
	resp, err := http.Post(baseURL+"/api/extract", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

func getStatus(baseURL string) (statusPayload, error) {
	resp, err := http.Get(baseURL + "/status")
	if err != nil {
		return statusPayload{}, err
	}
	defer resp.Body.Close()

	var stats statusPayload
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return statusPayload{}, err
	}
	return stats, nil
}

func printReport(final, initial statusPayload, duration time.Duration) {
	totalProcessed := (final.TasksSucceeded - initial.TasksSucceeded) + (final.TasksFailed - initial.TasksFailed)
	tps := float64(totalProcessed) / duration.Seconds()

	successRate := 100.0
	if totalProcessed > 0 {
		successRate = (float64(final.TasksSucceeded-initial.TasksSucceeded) / float64(totalProcessed)) * 100
	}

	fmt.Println("\n" + colorCyan + colorBold + "┏━━━━━━━━━━━━━━━━━━━━━━ REPORT ━━━━━━━━━━━━━━━━━━━━━━┓" + colorReset)

	lineFmt := colorCyan + "┃" + colorReset + "  %-22s " + colorBold + "%-25s" + colorCyan + "┃" + colorReset

	fmt.Printf(lineFmt+"\n", "Duration:", duration.Truncate(time.Millisecond).String())
	fmt.Printf(lineFmt+"\n", "Total Tasks:", fmt.Sprintf("%d", totalProcessed))

	succeededStr := fmt.Sprintf("%d", final.TasksSucceeded-initial.TasksSucceeded)
	fmt.Printf(colorCyan+"┃"+"  %-22s "+colorGreen+colorBold+"%-25s"+colorCyan+"┃"+colorReset+"\n", "  - Succeeded:", succeededStr)

	failedVal := final.TasksFailed - initial.TasksFailed
	failedColor := colorGreen
	if failedVal > 0 {
		failedColor = colorRed
	}
	fmt.Printf(colorCyan+"┃"+"  %-22s "+failedColor+colorBold+"%-25s"+colorCyan+"┃"+colorReset+"\n", "  - Failed:", fmt.Sprintf("%d", failedVal))

	fmt.Printf(lineFmt+"\n", "Success Rate:", fmt.Sprintf("%.2f%%", successRate))
	fmt.Printf(lineFmt+"\n", "Throughput (TPS):", fmt.Sprintf("%.2f tasks/sec", tps))
	fmt.Printf(lineFmt+"\n", "Cache Hits:", fmt.Sprintf("%d", final.CacheHits-initial.CacheHits))

	fmt.Println(colorCyan + colorBold + "┗━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━┛" + colorReset)
}
