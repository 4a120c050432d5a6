package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorPurple = "\033[35m"
	colorCyan   = "\033[36m"
)

const defaultProbeIdea = "A subscription service for rare houseplants"

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Exercise a running VentureMind server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		baseURL, _ := cmd.Flags().GetString("url")
		testType, _ := cmd.Flags().GetString("test")
		idea, _ := cmd.Flags().GetString("idea")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		p := newProber(cmd.OutOrStdout(), baseURL, timeout)
		p.printHeader("VentureMind - Probe Suite")
		fmt.Fprintf(p.out, "%sBase URL: %s%s\n\n", colorCyan, baseURL, colorReset)
		return p.run(testType, idea)
	},
}

func init() {
	probeCmd.Flags().String("url", "http://localhost:8080", "base URL of the server")
	probeCmd.Flags().String("test", "all", "test to run: all, health, agent-card, chat, a2a")
	probeCmd.Flags().String("idea", defaultProbeIdea, "startup idea used by chat and a2a tests")
	probeCmd.Flags().Duration("timeout", 3*time.Minute, "per-request timeout")
	rootCmd.AddCommand(probeCmd)
}

type prober struct {
	out     io.Writer
	baseURL string
	client  *http.Client
}

func newProber(out io.Writer, baseURL string, timeout time.Duration) *prober {
	return &prober{
		out:     out,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *prober) run(testType, idea string) error {
	tests := map[string]func() bool{
		"health":     p.testHealthCheck,
		"agent-card": p.testAgentCard,
		"chat":       func() bool { return p.testChat(idea) },
		"a2a":        func() bool { return p.testA2A(idea) },
	}
	order := []string{"health", "agent-card", "chat", "a2a"}

	if testType != "all" {
		fn, ok := tests[testType]
		if !ok {
			p.printError(fmt.Sprintf("Unknown test type: %s", testType))
			fmt.Fprintln(p.out, "\nAvailable tests: all, health, agent-card, chat, a2a")
			return fmt.Errorf("unknown test type %q", testType)
		}
		if !fn() {
			return fmt.Errorf("probe %s failed", testType)
		}
		return nil
	}

	passed, failed := 0, 0
	for _, name := range order {
		if tests[name]() {
			passed++
		} else {
			failed++
		}
		fmt.Fprintln(p.out)
	}

	p.printHeader("Probe Summary")
	fmt.Fprintf(p.out, "%sPassed: %d%s\n", colorGreen, passed, colorReset)
	fmt.Fprintf(p.out, "%sFailed: %d%s\n", colorRed, failed, colorReset)
	fmt.Fprintf(p.out, "Total: %d\n", passed+failed)

	if failed > 0 {
		return fmt.Errorf("%d probe(s) failed", failed)
	}
	return nil
}

func (p *prober) testHealthCheck() bool {
	p.printTestHeader("Health Check Endpoint")

	url := p.baseURL + "/health"
	fmt.Fprintf(p.out, "GET %s\n", url)

	resp, err := p.client.Get(url)
	if err != nil {
		p.printError(fmt.Sprintf("Request failed: %v", err))
		return false
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		p.printError(fmt.Sprintf("Expected status 200, got %d", resp.StatusCode))
		return false
	}
	if string(body) != "OK" {
		p.printError(fmt.Sprintf("Expected body 'OK', got '%s'", string(body)))
		return false
	}

	p.printSuccess("Health check passed")
	return true
}

func (p *prober) testAgentCard() bool {
	p.printTestHeader("Agent Card Endpoint")

	url := p.baseURL + "/.well-known/agent.json"
	fmt.Fprintf(p.out, "GET %s\n", url)

	resp, err := p.client.Get(url)
	if err != nil {
		p.printError(fmt.Sprintf("Request failed: %v", err))
		return false
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		p.printError(fmt.Sprintf("Expected status 200, got %d", resp.StatusCode))
		fmt.Fprintf(p.out, "Response: %s\n", string(body))
		return false
	}

	var card map[string]any
	if err := json.Unmarshal(body, &card); err != nil {
		p.printError(fmt.Sprintf("Invalid JSON response: %v", err))
		return false
	}
	for _, field := range []string{"name", "description", "url", "version", "capabilities", "skills"} {
		if _, ok := card[field]; !ok {
			p.printError(fmt.Sprintf("Missing required field: %s", field))
			return false
		}
	}

	p.printSuccess("Agent card is valid")
	p.printJSON(body)
	return true
}

func (p *prober) testChat(idea string) bool {
	p.printTestHeader("Chat Endpoint")

	url := p.baseURL + "/api/chat"
	fmt.Fprintf(p.out, "POST %s\n", url)
	fmt.Fprintf(p.out, "%sIdea:%s %s\n\n", colorCyan, colorReset, idea)

	payload, _ := json.Marshal(map[string]string{"message": idea})
	resp, err := p.client.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		p.printError(fmt.Sprintf("Request failed: %v", err))
		return false
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		p.printError(fmt.Sprintf("Expected status 200, got %d", resp.StatusCode))
		fmt.Fprintf(p.out, "Response: %s\n", string(body))
		return false
	}

	var out struct {
		ReplyMarkdown    string `json:"reply_markdown"`
		CompetitorMatrix []any  `json:"competitor_matrix"`
		StartupPack      struct {
			Brand struct {
				Name    string  `json:"name"`
				LogoURL *string `json:"logo_url"`
			} `json:"brand"`
		} `json:"startup_pack"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		p.printError(fmt.Sprintf("Invalid JSON response: %v", err))
		return false
	}
	if out.ReplyMarkdown == "" || out.StartupPack.Brand.Name == "" {
		p.printError("Response is missing reply_markdown or brand name")
		return false
	}

	p.printSuccess(fmt.Sprintf("Startup pack generated for %q", out.StartupPack.Brand.Name))
	fmt.Fprintf(p.out, "Logo: %v, competitor rows: %d\n", out.StartupPack.Brand.LogoURL != nil, len(out.CompetitorMatrix))
	fmt.Fprintf(p.out, "\n%sReply:%s\n", colorGreen, colorReset)
	fmt.Fprintln(p.out, strings.Repeat("=", 80))
	fmt.Fprintln(p.out, out.ReplyMarkdown)
	fmt.Fprintln(p.out, strings.Repeat("=", 80))
	return true
}

func (p *prober) testA2A(idea string) bool {
	p.printTestHeader("A2A Task")

	url := p.baseURL + "/a2a/venture"
	fmt.Fprintf(p.out, "POST %s\n", url)

	request := map[string]any{
		"jsonrpc": "2.0",
		"id":      fmt.Sprintf("probe-%d", time.Now().Unix()),
		"method":  "message/send",
		"params": map[string]any{
			"message": map[string]any{
				"kind":  "message",
				"role":  "user",
				"parts": []map[string]any{{"kind": "text", "text": idea}},
			},
			"configuration": map[string]any{
				"blocking":            true,
				"acceptedOutputModes": []string{"text", "data"},
			},
		},
	}
	jsonData, _ := json.MarshalIndent(request, "", "  ")
	fmt.Fprintf(p.out, "%sRequest:%s\n%s\n\n", colorYellow, colorReset, string(jsonData))

	resp, err := p.client.Post(url, "application/json", bytes.NewReader(jsonData))
	if err != nil {
		p.printError(fmt.Sprintf("Request failed: %v", err))
		return false
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		p.printError(fmt.Sprintf("Expected status 200, got %d", resp.StatusCode))
		fmt.Fprintf(p.out, "Response: %s\n", string(body))
		return false
	}

	var response struct {
		Error  json.RawMessage `json:"error"`
		Result *struct {
			Status struct {
				State   string `json:"state"`
				Message *struct {
					Parts []struct {
						Text string `json:"text"`
					} `json:"parts"`
				} `json:"message"`
			} `json:"status"`
			Artifacts []struct {
				Name string `json:"name"`
			} `json:"artifacts"`
		} `json:"result"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		p.printError(fmt.Sprintf("Invalid JSON response: %v", err))
		return false
	}
	if len(response.Error) > 0 && string(response.Error) != "null" {
		p.printError("Request returned an error")
		p.printJSON(response.Error)
		return false
	}
	if response.Result == nil {
		p.printError("Invalid result format")
		return false
	}
	if state := response.Result.Status.State; state != "completed" {
		p.printError(fmt.Sprintf("Expected state 'completed', got '%s'", state))
		return false
	}

	p.printSuccess("A2A task completed successfully")
	if len(response.Result.Artifacts) > 0 {
		fmt.Fprintf(p.out, "\n%sArtifacts:%s\n", colorPurple, colorReset)
		for _, a := range response.Result.Artifacts {
			fmt.Fprintf(p.out, "- %s\n", a.Name)
		}
	}
	return true
}

func (p *prober) printHeader(text string) {
	fmt.Fprintf(p.out, "\n%s%s%s\n", colorBlue, strings.Repeat("=", len(text)+4), colorReset)
	fmt.Fprintf(p.out, "%s= %s =%s\n", colorBlue, text, colorReset)
	fmt.Fprintf(p.out, "%s%s%s\n\n", colorBlue, strings.Repeat("=", len(text)+4), colorReset)
}

func (p *prober) printTestHeader(text string) {
	fmt.Fprintf(p.out, "%s[TEST] %s%s\n", colorCyan, text, colorReset)
	fmt.Fprintln(p.out, strings.Repeat("-", 80))
}

func (p *prober) printSuccess(text string) {
	fmt.Fprintf(p.out, "%s✓ %s%s\n", colorGreen, text, colorReset)
}

func (p *prober) printError(text string) {
	fmt.Fprintf(p.out, "%s✗ %s%s\n", colorRed, text, colorReset)
}

func (p *prober) printJSON(data []byte) {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err == nil {
		fmt.Fprintf(p.out, "\n%sResponse:%s\n%s\n", colorYellow, colorReset, pretty.String())
	}
}
