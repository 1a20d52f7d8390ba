package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

type benchConfig struct {
	BaseURL      string
	InvitationID string
	Total        int
	Concurrency  int
	RSVP         bool
}

type benchStats struct {
	Success     uint64
	Failed      uint64
	Latencies   []time.Duration
	StatusCodes map[int]int
	mu          sync.Mutex
}

// Reuse request bodies across workers.
var bufferPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

func benchCmd() *cobra.Command {
	var cfg benchConfig
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Load test a running server: guest pages, avatars and RSVP writes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
			return runBench(cfg)
		},
	}
	cmd.Flags().StringVarP(&cfg.BaseURL, "url", "u", "http://127.0.0.1:8080", "Server origin")
	cmd.Flags().StringVarP(&cfg.InvitationID, "invitation", "i", "", "Invitation id for the guest page and RSVP phases")
	cmd.Flags().IntVarP(&cfg.Total, "requests", "n", 2000, "Requests per phase")
	cmd.Flags().IntVarP(&cfg.Concurrency, "concurrency", "c", 50, "Concurrent requests")
	cmd.Flags().BoolVar(&cfg.RSVP, "rsvp", false, "Also run the RSVP write phase (stores replies)")
	return cmd
}

func runBench(cfg benchConfig) error {
	pterm.DefaultBigText.WithLetters(
		pterm.NewLettersFromStringWithStyle("GLOW", pterm.NewStyle(pterm.FgLightMagenta)),
		pterm.NewLettersFromStringWithStyle("BENCH", pterm.NewStyle(pterm.FgYellow)),
	).Render()
	pterm.Info.Printf("Target: %s | Workers: %d | Requests: %d\n", cfg.BaseURL, cfg.Concurrency, cfg.Total)

	client := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:          1000,
			MaxIdleConnsPerHost:   cfg.Concurrency + 50,
			IdleConnTimeout:       90 * time.Second,
			DisableCompression:    true,
			ResponseHeaderTimeout: 30 * time.Second,
		},
	}
	if !checkServerHealth(client, cfg.BaseURL) {
		return fmt.Errorf("server %s is not reachable", cfg.BaseURL)
	}

	runPhase("AVATAR (cache miss)", cfg, func() int {
		return doRequest(client, http.MethodGet, fmt.Sprintf("%s/avatar/%s", cfg.BaseURL, uuid.NewString()), nil)
	})

	if cfg.InvitationID == "" {
		pterm.Warning.Println("No --invitation given, skipping guest page and RSVP phases.")
		return nil
	}

	fmt.Println()
	page := cfg.BaseURL + "/?invitationId=" + url.QueryEscape(cfg.InvitationID)
	runPhase("GUEST PAGE (cached)", cfg, func() int {
		return doRequest(client, http.MethodGet, page+"&guestName=Bench", nil)
	})

	fmt.Println()
	runPhase("GUEST PAGE (per guest)", cfg, func() int {
		return doRequest(client, http.MethodGet, page+"&guestName="+url.QueryEscape("Khách "+uuid.NewString()[:8]), nil)
	})

	if !cfg.RSVP {
		return nil
	}
	fmt.Println()
	endpoint := cfg.BaseURL + "/api/invitations/" + url.PathEscape(cfg.InvitationID) + "/rsvp"
	runPhase("RSVP WRITE", cfg, func() int {
		body := bufferPool.Get().(*bytes.Buffer)
		body.Reset()
		defer bufferPool.Put(body)
		json.NewEncoder(body).Encode(map[string]string{
			"guestName":   "bench-" + uuid.NewString()[:8],
			"guestWishes": "load test",
		})
		return doRequest(client, http.MethodPost, endpoint, body)
	})
	return nil
}

func runPhase(name string, cfg benchConfig, operation func() int) {
	bar, _ := pterm.DefaultProgressbar.WithTotal(cfg.Total).WithTitle(name).WithRemoveWhenDone(true).Start()

	stats := &benchStats{
		StatusCodes: make(map[int]int),
		Latencies:   make([]time.Duration, 0, cfg.Total),
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, max(cfg.Concurrency, 1))
	start := time.Now()

	for i := 0; i < cfg.Total; i++ {
		wg.Add(1)
		sem <- struct{}{}

		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			t0 := time.Now()
			code := operation()
			dur := time.Since(t0)

			stats.mu.Lock()
			stats.Latencies = append(stats.Latencies, dur)
			stats.StatusCodes[code]++
			stats.mu.Unlock()

			if code >= 200 && code < 300 {
				atomic.AddUint64(&stats.Success, 1)
			} else {
				atomic.AddUint64(&stats.Failed, 1)
			}
			bar.Increment()
		}()
	}

	wg.Wait()
	pterm.DefaultSection.Println(name)
	printReport(stats, time.Since(start), cfg.Total)
}

func doRequest(client *http.Client, method, target string, body io.Reader) int {
	req, err := http.NewRequest(method, target, body)
	if err != nil {
		return 0
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0
	}
	defer resp.Body.Close()
	// Drain so the connection is reused.
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode
}

func checkServerHealth(client *http.Client, baseURL string) bool {
	spinner, _ := pterm.DefaultSpinner.Start("Checking server...")
	if resp, err := client.Get(baseURL + "/"); err == nil {
		resp.Body.Close()
		spinner.Success("Server is UP! (" + baseURL + ")")
		return true
	}
	spinner.Fail("Server is DOWN! (" + baseURL + ")")
	return false
}

func printReport(s *benchStats, totalTime time.Duration, totalReq int) {
	if len(s.Latencies) == 0 {
		return
	}

	sort.Slice(s.Latencies, func(i, j int) bool { return s.Latencies[i] < s.Latencies[j] })
	count := len(s.Latencies)

	data := [][]string{
		{"Metric", "Value"},
		{"Throughput", fmt.Sprintf("%.2f Req/sec", float64(totalReq)/totalTime.Seconds())},
		{"Success Rate", fmt.Sprintf("%.2f%%", float64(atomic.LoadUint64(&s.Success))/float64(totalReq)*100)},
		{"P50 Latency", s.Latencies[count/2].String()},
		{"P95 Latency", s.Latencies[int(float64(count)*0.95)].String()},
		{"P99 Latency", s.Latencies[int(float64(count)*0.99)].String()},
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()

	if atomic.LoadUint64(&s.Failed) > 0 {
		pterm.Warning.Println("Status Code Breakdown (Errors):")
		codes := make([]int, 0, len(s.StatusCodes))
		for code := range s.StatusCodes {
			codes = append(codes, code)
		}
		sort.Ints(codes)
		for _, code := range codes {
			if code >= 400 || code == 0 {
				fmt.Printf("HTTP %d: %d\n", code, s.StatusCodes[code])
			}
		}
	}
}
