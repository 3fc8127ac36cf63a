package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

const (
	baseURL      = "http://127.0.0.1:18090"
	numWorkers   = 50
	testDuration = 10 * time.Second
	numDevices   = 200
	numPages     = 8
)

// Keys from the built-in fallback allow-list plus a share of unknown keys.
var (
	validKeys   = []string{"EF-26Q1-A9F4KZ2M", "EF-26Q1-B3H8LP5N", "EF-26Q1-C7J2MR9R"}
	invalidKeys = []string{"EF-26Q1-ZZZZZZZ", "EF-26Q1-0000000", "BOGUS"}
)

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

func main() {
	fmt.Println("=== EigenKey Load Test ===")
	fmt.Printf("Workers: %d | Duration: %s\n", numWorkers, testDuration)
	fmt.Printf("Keys: %d valid, %d invalid | Devices: %d\n\n", len(validKeys), len(invalidKeys), numDevices)

	// Wait for server
	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(baseURL + "/health")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	// Phase 1: page renders only
	fmt.Println("\n--- Phase 1: Access gate (POST /access) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		return doAccess(rng)
	})

	// Phase 2: mixed gate and lookups
	fmt.Println("\n--- Phase 2: Mixed load (70% access, 20% validate, 10% anomaly) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.70:
			return doAccess(rng)
		case r < 0.90:
			return doValidate(rng)
		default:
			return doAnomaly(rng)
		}
	})
}

func pickKey(rng *rand.Rand) (string, bool) {
	if rng.Float64() < 0.8 {
		return validKeys[rng.Intn(len(validKeys))], true
	}
	return invalidKeys[rng.Intn(len(invalidKeys))], false
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	var totalOps atomic.Int64
	stop := make(chan struct{})

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					r := workFn(rng)
					totalOps.Add(1)
					results <- r
				}
			}
		}(rand.Int63() + int64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.endpoint]
			if !ok {
				s = &stats{}
				allResults[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(allResults, duration)
}

func printResults(allResults map[string]*stats, duration time.Duration) {
	var totalOps int64
	var totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-22s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + repeat("-", 88))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		avg := avgDuration(s.latencies)
		p50 := percentile(s.latencies, 0.50)
		p95 := percentile(s.latencies, 0.95)
		p99 := percentile(s.latencies, 0.99)

		fmt.Printf("  %-22s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors, fmtDur(avg), fmtDur(p50), fmtDur(p95), fmtDur(p99))
	}

	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + repeat("-", 88))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, rps)
}

func doAccess(rng *rand.Rand) result {
	key, valid := pickKey(rng)
	data, _ := json.Marshal(map[string]string{
		"key":  key,
		"page": fmt.Sprintf("page-%d", rng.Intn(numPages)),
	})

	req, _ := http.NewRequest(http.MethodPost, baseURL+"/access", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Device-ID", fmt.Sprintf("device-%d", rng.Intn(numDevices)))

	start := time.Now()
	resp, err := httpClient.Do(req)
	lat := time.Since(start)
	if err != nil {
		return result{"POST /access", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	// Expired fallback keys also answer 403 once their window has passed.
	ok := resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusForbidden
	if !valid {
		ok = resp.StatusCode == http.StatusForbidden
	}
	return result{"POST /access", resp.StatusCode, lat, !ok}
}

func doGet(endpoint string, rng *rand.Rand) result {
	key, _ := pickKey(rng)
	start := time.Now()
	resp, err := httpClient.Get(baseURL + endpoint + "?key=" + url.QueryEscape(key))
	lat := time.Since(start)
	if err != nil {
		return result{"GET " + endpoint, 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"GET " + endpoint, resp.StatusCode, lat, resp.StatusCode != http.StatusOK}
}

func doValidate(rng *rand.Rand) result {
	return doGet("/validate", rng)
}

func doAnomaly(rng *rand.Rand) result {
	return doGet("/anomaly", rng)
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dus", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}

func repeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}
