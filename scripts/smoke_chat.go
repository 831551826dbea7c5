package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/fatih/color"
)

const baseURL = "http://localhost:8000"

// Pretty print JSON helper
func prettyPrint(raw []byte) {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		fmt.Println(string(raw))
		return
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Println(string(raw))
		return
	}
	fmt.Println(string(b))
}

// Request helper
func sendRequest(method, url string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func step(title string) {
	color.Cyan("\n=== %s ===", title)
}

func check(resp *http.Response, body []byte, err error) {
	if err != nil {
		color.Red("Request failed: %v", err)
		os.Exit(1)
	}
	if resp.StatusCode >= 400 {
		color.Red("HTTP %d", resp.StatusCode)
	} else {
		color.Green("HTTP %d", resp.StatusCode)
	}
	prettyPrint(body)
}

func main() {
	color.Yellow("AI Assistant smoke test against %s", baseURL)

	step("Health check")
	resp, body, err := sendRequest(http.MethodGet, "/health", nil)
	check(resp, body, err)

	step("Reset conversation")
	resp, body, err = sendRequest(http.MethodPost, "/api/chat/new", nil)
	check(resp, body, err)

	step("Direct-knowledge question (no tool expected)")
	resp, body, err = sendRequest(http.MethodPost, "/api/chat", map[string]string{
		"query": "What is the capital of France?",
	})
	check(resp, body, err)

	step("Document search question")
	resp, body, err = sendRequest(http.MethodPost, "/api/chat", map[string]string{
		"query": "What do our documents say about solar panel maintenance?",
	})
	check(resp, body, err)

	step("Database question")
	resp, body, err = sendRequest(http.MethodPost, "/api/chat", map[string]string{
		"query": "Which users have a balance above 500?",
	})
	check(resp, body, err)

	step("Conversation history")
	resp, body, err = sendRequest(http.MethodGet, "/api/chat/history", nil)
	check(resp, body, err)

	color.Yellow("\nDone.")
}
