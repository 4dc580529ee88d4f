package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
)

const (
	baseURL = "http://localhost:8001"
	// Fill in when JWT_SECRET is set on the server; empty skips the header.
	apiToken = ""
)

// Pretty print JSON helper
func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

// Request helper
func sendRequest(method, url, token string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	// Agent queries can take a while against a local model.
	client := &http.Client{Timeout: 120 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func main() {
	color.Cyan("🚀 Starting Assembly RAG API Smoke Test\n")

	// 1. Health check
	color.Yellow("\n[SYSTEM] 1. Health Check")
	resp, body, err := sendRequest("GET", "/healthz", "", nil)
	if err != nil {
		color.Red("Failed: %v (is the server running on %s?)", err, baseURL)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var healthResp map[string]interface{}
	json.Unmarshal(body, &healthResp)
	prettyPrint(healthResp)

	// 2. Ingest a small batch of minutes
	color.Yellow("\n[INGEST] 2. Create Minutes (Bulk)")
	bulkReq := map[string]interface{}{
		"minutes": []map[string]interface{}{
			{
				"minutes_type":    "본회의",
				"minutes_date":    "2024-11-14T10:00:00Z",
				"assembly_number": "22",
				"session_number":  "418",
				"speech_order":    1,
				"speaker":         "김영식",
				"position":        "의원",
				"content":         "반도체 산업 지원을 위한 특별법 제정이 시급합니다. 주요국은 이미 대규모 보조금을 집행하고 있습니다.",
			},
			{
				"minutes_type":    "본회의",
				"minutes_date":    "2024-11-14T10:00:00Z",
				"assembly_number": "22",
				"session_number":  "418",
				"speech_order":    2,
				"speaker":         "산업통상자원부장관",
				"position":        "장관",
				"content":         "정부는 반도체 클러스터 조성과 세액공제 확대를 포함한 지원 방안을 검토하고 있습니다.",
			},
		},
	}
	resp, body, err = sendRequest("POST", "/api/minutes/v1", apiToken, bulkReq)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var createResp map[string]interface{}
	json.Unmarshal(body, &createResp)
	prettyPrint(createResp)

	// Give the embedding consumer a moment before querying.
	color.White("Waiting 5s for the embedding consumer to index the batch...")
	time.Sleep(5 * time.Second)

	// 3. Corpus stats
	color.Yellow("\n[INGEST] 3. Corpus Stats")
	resp, body, err = sendRequest("GET", "/api/minutes/v1/stats", apiToken, nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var statsResp map[string]interface{}
	json.Unmarshal(body, &statsResp)
	prettyPrint(statsResp)

	// 4. Ask a question grounded in the batch above
	color.Yellow("\n[QUERY] 4. Ask: '반도체 산업 지원'")
	queryReq := map[string]interface{}{
		"query":         "국회에서 반도체 산업 지원에 대해 어떤 논의가 있었나요?",
		"include_trace": true,
	}
	resp, body, err = sendRequest("POST", "/query", apiToken, queryReq)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var queryResp map[string]interface{}
	json.Unmarshal(body, &queryResp)
	prettyPrint(queryResp)

	// 5. Ask again: the answer cache should serve this one
	color.Yellow("\n[QUERY] 5. Repeat the Same Question (expect cached=true)")
	resp, body, err = sendRequest("POST", "/query", apiToken, queryReq)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var cachedResp map[string]interface{}
	json.Unmarshal(body, &cachedResp)
	if data, ok := cachedResp["data"].(map[string]interface{}); ok {
		if cached, ok := data["cached"].(bool); ok && cached {
			color.Green("Cache hit confirmed ✅")
		} else {
			color.Red("Expected cached=true on repeat query")
		}
	}

	// 6. Error envelope: blank query must return 400 with an error_kind
	color.Yellow("\n[QUERY] 6. Blank Query (expect 400 invalid_query)")
	resp, body, err = sendRequest("POST", "/query", apiToken, map[string]interface{}{"query": "   "})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	if resp.StatusCode != http.StatusBadRequest {
		color.Red("Expected 400, got %s", resp.Status)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var errResp map[string]interface{}
	json.Unmarshal(body, &errResp)
	prettyPrint(errResp)

	color.Cyan("\n✅ Smoke test finished")
}
