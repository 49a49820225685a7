package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"
)

// --- VISUAL CONSTANTS ---
const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Cyan   = "\033[36m"
	Gray   = "\033[37m"
)

// header prints a styled section header
func header(title string) {
	fmt.Println("\n" + Bold + Cyan + ":: " + title + " ::" + Reset)
}

type console struct {
	baseURL    string
	adminToken string
	client     *http.Client
	reader     *bufio.Reader
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Registry API base URL.")
	adminToken := flag.String("admin-token", "", "Bearer token for admin operations.")
	flag.Parse()

	c := &console{
		baseURL:    strings.TrimRight(*baseURL, "/"),
		adminToken: *adminToken,
		client:     &http.Client{Timeout: 30 * time.Second},
		reader:     bufio.NewReader(os.Stdin),
	}

	fmt.Println(Green + "Starting Oracle Registry Console..." + Reset)
	c.run()
}

func (c *console) run() {
	for {
		c.printMenu()

		fmt.Print(Bold + "Enter selection: " + Reset)
		input, err := c.reader.ReadString('\n')
		if err != nil {
			fmt.Println("Error reading input:", err)
			return
		}
		input = strings.TrimSpace(input)

		if input == "q" {
			fmt.Println(Yellow + "Exiting..." + Reset)
			return
		}
		c.handleCommand(input)

		fmt.Println("\n" + Gray + "[Press Enter to continue]" + Reset)
		c.reader.ReadString('\n')
	}
}

func (c *console) printMenu() {
	fmt.Print("\033[H\033[2J") // Clear screen
	version := c.fetchVersion()
	fmt.Println(Bold + "ORACLE FEED REGISTRY" + Reset + Gray + " | " + version + Reset)
	fmt.Println(Gray + "-----------------------------------" + Reset)
	fmt.Printf(" %s1.%s List Deployers\n", Cyan, Reset)
	fmt.Printf(" %s2.%s List Pending Feeds\n", Cyan, Reset)
	fmt.Printf(" %s3.%s Inspect Feed %s(by Quote/Feed Address)%s\n", Cyan, Reset, Gray, Reset)
	fmt.Printf(" %s4.%s Suggest Feed\n", Cyan, Reset)
	fmt.Printf(" %s5.%s Approve Pending Feed %s(admin)%s\n", Cyan, Reset, Gray, Reset)
	fmt.Printf(" %s6.%s Orphaned Feeds\n", Cyan, Reset)
	fmt.Println(Gray + "-----------------------------------" + Reset)
	fmt.Printf(" %sq.%s Quit\n", Red, Reset)
	fmt.Println("")
}

func (c *console) handleCommand(input string) {
	switch input {
	case "1":
		c.listDeployers()
	case "2":
		c.listPendingFeeds()
	case "3":
		c.inspectFeed()
	case "4":
		c.suggestFeed()
	case "5":
		c.approveFeed()
	case "6":
		c.listOrphanedFeeds()
	default:
		fmt.Println(Red + "Unknown command." + Reset)
	}
}

// --- COMMAND HANDLERS ---

func (c *console) listDeployers() {
	var deployers []struct {
		Deployer   string `json:"deployer"`
		QuoteToken string `json:"quoteToken"`
	}
	if !c.get("/v1/deployers", &deployers) {
		return
	}

	header("DEPLOYERS")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 4, ' ', 0)
	fmt.Fprintln(w, "DEPLOYER\tQUOTE TOKEN\t")
	fmt.Fprintln(w, "--------\t-----------\t")
	for _, d := range deployers {
		fmt.Fprintf(w, "%s\t%s\t\n", d.Deployer, d.QuoteToken)
	}
	w.Flush()
	fmt.Printf("\n%sTotal: %d%s\n", Bold, len(deployers), Reset)
}

type feedRecord struct {
	Deployer   string   `json:"deployer"`
	Feed       string   `json:"feed"`
	Approved   bool     `json:"approved"`
	BaseTokens []string `json:"baseTokens"`
}

const zeroAddress = "0x0000000000000000000000000000000000000000"

func (c *console) listPendingFeeds() {
	var pending []feedRecord
	if !c.get("/v1/feeds/pending", &pending) {
		return
	}

	header("PENDING FEEDS")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 4, ' ', 0)
	fmt.Fprintln(w, "INDEX\tDEPLOYER\tFEED\tTOKENS\tSTATUS\t")
	fmt.Fprintln(w, "-----\t--------\t----\t------\t------\t")
	live := 0
	for i, rec := range pending {
		status := Green + "pending" + Reset
		if rec.Feed == "" || strings.EqualFold(rec.Feed, zeroAddress) {
			status = Gray + "consumed" + Reset
		} else {
			live++
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t\n", i, rec.Deployer, rec.Feed, len(rec.BaseTokens), status)
	}
	w.Flush()
	fmt.Printf("\n%sLive: %d of %d slots%s\n", Bold, live, len(pending), Reset)
}

func (c *console) inspectFeed() {
	quote := c.prompt("[Inspect] Quote token address: ")
	feed := c.prompt("[Inspect] Feed address: ")
	if quote == "" || feed == "" {
		return
	}

	var rec feedRecord
	if !c.get("/v1/feeds/"+quote+"/"+feed, &rec) {
		return
	}

	header("APPROVED FEED")
	fmt.Printf("Deployer:   %s\n", rec.Deployer)
	fmt.Printf("Feed:       %s\n", rec.Feed)
	fmt.Printf("Approved:   %s%v%s\n", Green, rec.Approved, Reset)
	fmt.Printf("Base tokens (%d):\n", len(rec.BaseTokens))
	for _, t := range rec.BaseTokens {
		fmt.Printf("  %s%s%s\n", Yellow, t, Reset)
	}
}

func (c *console) suggestFeed() {
	quote := c.prompt("[Suggest] Quote token address: ")
	feed := c.prompt("[Suggest] Feed address: ")
	tokens := c.prompt("[Suggest] Base tokens (comma-separated, optional): ")
	caller := c.prompt("[Suggest] Caller address: ")
	if quote == "" || feed == "" || caller == "" {
		return
	}

	baseTokens := []string{}
	for _, t := range strings.Split(tokens, ",") {
		if t = strings.TrimSpace(t); t != "" {
			baseTokens = append(baseTokens, t)
		}
	}

	var resp struct {
		Index int `json:"index"`
	}
	body := map[string]any{
		"caller":     caller,
		"quoteToken": quote,
		"feed":       feed,
		"baseTokens": baseTokens,
	}
	if !c.post("/v1/feeds/suggestions", body, &resp, false) {
		return
	}
	fmt.Printf("%sSuggested. Pending index: %d%s\n", Green, resp.Index, Reset)
}

func (c *console) approveFeed() {
	index := c.prompt("[Approve] Pending index: ")
	if index == "" {
		return
	}
	if !c.post("/v1/feeds/pending/"+index+"/approve", nil, nil, true) {
		return
	}
	fmt.Printf("%sApproved pending feed at index %s.%s\n", Green, index, Reset)
}

func (c *console) listOrphanedFeeds() {
	var orphans []feedRecord
	if !c.get("/v1/feeds/orphaned", &orphans) {
		return
	}

	header("ORPHANED FEEDS")
	if len(orphans) == 0 {
		fmt.Println(Green + "No orphaned feeds." + Reset)
		return
	}
	for _, rec := range orphans {
		fmt.Printf("%s%s%s (deployer %s, %d tokens)\n",
			Yellow, rec.Feed, Reset, rec.Deployer, len(rec.BaseTokens))
	}
}

// --- HELPERS ---

func (c *console) prompt(label string) string {
	fmt.Print("\n" + Bold + label + Reset)
	input, _ := c.reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func (c *console) fetchVersion() string {
	var resp struct {
		Version string `json:"version"`
	}
	if !c.get("/v1/version", &resp) {
		return Red + "offline" + Reset
	}
	return "v" + resp.Version
}

func (c *console) get(path string, out any) bool {
	resp, err := c.client.Get(c.baseURL + path)
	if err != nil {
		fmt.Printf(Red+"[ERROR] %v%s\n", err, Reset)
		return false
	}
	defer resp.Body.Close()
	return c.decode(resp, out)
}

func (c *console) post(path string, body, out any, admin bool) bool {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			fmt.Printf(Red+"[ERROR] %v%s\n", err, Reset)
			return false
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, payload)
	if err != nil {
		fmt.Printf(Red+"[ERROR] %v%s\n", err, Reset)
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	if admin {
		req.Header.Set("Authorization", "Bearer "+c.adminToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		fmt.Printf(Red+"[ERROR] %v%s\n", err, Reset)
		return false
	}
	defer resp.Body.Close()
	return c.decode(resp, out)
}

func (c *console) decode(resp *http.Response, out any) bool {
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			fmt.Printf(Red+"[%d] %s%s\n", resp.StatusCode, apiErr.Error, Reset)
		} else {
			fmt.Printf(Red+"[%d] request failed%s\n", resp.StatusCode, Reset)
		}
		return false
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return true
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		fmt.Printf(Red+"[ERROR] decoding response: %v%s\n", err, Reset)
		return false
	}
	return true
}
