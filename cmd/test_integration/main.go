package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const (
	baseURL = "http://localhost:8080"
)

// Smoke test against a running server. Ontology paths are resolved on the
// server side, so run it from the repository root next to the server.
func main() {
	// Wait for server to start
	time.Sleep(2 * time.Second)

	fmt.Println("Starting smoke test...")

	fmt.Println("1. Health check...")
	if _, ok := sendRequest("GET", "/healthz", nil); !ok {
		fmt.Println("FAILED: Health check")
		os.Exit(1)
	}
	fmt.Println("PASSED: Health check")

	fmt.Println("2. Aligning cmt with ekaw...")
	payload := map[string]interface{}{
		"source": "testdata/cmt.owl",
		"target": "testdata/ekaw.owl",
	}
	body, ok := sendRequest("POST", "/align", payload)
	if !ok {
		fmt.Println("FAILED: Align")
		os.Exit(1)
	}

	var resp struct {
		RunID  string `json:"run_id"`
		Report string `json:"report"`
	}
	if err := json.Unmarshal(body, &resp); err != nil || resp.RunID == "" {
		fmt.Printf("FAILED: Align returned an unexpected body: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("PASSED: Align (run %s)\n%s", resp.RunID, resp.Report)
}

func sendRequest(method, endpoint string, payload interface{}) ([]byte, bool) {
	var body io.Reader
	if payload != nil {
		jsonBytes, _ := json.Marshal(payload)
		body = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, baseURL+endpoint, body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return nil, false
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return nil, false
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request failed with status %d: %s\n", resp.StatusCode, string(respBody))
		return nil, false
	}

	return respBody, true
}
