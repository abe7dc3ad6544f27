// shopctl is a CLI tool for exercising the storefront from the terminal.
// Each command performs a single operation, making it composable for scripts.
//
// Commands:
//
//	shopctl search -store URL [-query TEXT] [-category NAME]
//	shopctl add -store URL -session TOKEN -product ID
//	shopctl cart -store URL -session TOKEN
//	shopctl checkout -store URL -session TOKEN
//
// Examples:
//
//	TOKEN=$(shopctl search -store http://localhost:8080 -query mug -q)
//	shopctl add -store http://localhost:8080 -session "$TOKEN" -product 42
//	shopctl cart -store http://localhost:8080 -session "$TOKEN"
//	shopctl checkout -store http://localhost:8080 -session "$TOKEN"
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

var client = &http.Client{Timeout: 30 * time.Second}

// Global flags (apply to all commands)
var (
	storeURL     string
	sessionToken string
	quiet        bool
	noColor      bool
	verbose      bool
)

// shopperAgent identifies this tool in the Shopper-Agent header.
const shopperAgent = `name="shopctl";version="1.0"`

// ANSI color codes
var (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

func init() {
	if os.Getenv("NO_COLOR") != "" {
		disableColors()
	}
}

func disableColors() {
	colorReset, colorRed, colorGreen = "", "", ""
	colorYellow, colorCyan, colorGray, colorBold = "", "", "", ""
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "search":
		runSearch(args)
	case "add":
		runAdd(args)
	case "cart":
		runCart(args)
	case "checkout":
		runCheckout(args)
	case "-h", "-help", "--help", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `shopctl - storefront shopping test tool

Usage:
  shopctl <command> [options]

Commands:
  search    Search the catalog and start (or reuse) a session
  add       Add a product from the last search to the cart
  cart      Show the cart's lines and subtotal
  checkout  Submit the cart as an order

Examples:
  # Search and capture the session token
  TOKEN=$(shopctl search -store http://localhost:8080 -query mug -q)

  # Add a product twice; the line quantity becomes 2
  shopctl add -store http://localhost:8080 -session "$TOKEN" -product 42
  shopctl add -store http://localhost:8080 -session "$TOKEN" -product 42

  # Inspect and submit
  shopctl cart -store http://localhost:8080 -session "$TOKEN"
  shopctl checkout -store http://localhost:8080 -session "$TOKEN"

Run 'shopctl <command> -h' for command-specific options.
`)
}

// commonFlags registers the flags every command shares.
func commonFlags(fs *flag.FlagSet) {
	fs.StringVar(&storeURL, "store", "http://localhost:8080", "Storefront base URL")
	fs.StringVar(&sessionToken, "session", "", "Session token from a previous command")
	fs.BoolVar(&quiet, "q", false, "Quiet mode - only output the primary value")
	fs.BoolVar(&noColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&verbose, "v", false, "Verbose - show full request/response")
}

// =============================================================================
// SEARCH COMMAND
// =============================================================================

func runSearch(args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	commonFlags(fs)
	var query, category string
	fs.StringVar(&query, "query", "", "Free-text search query")
	fs.StringVar(&category, "category", "", "Category filter")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: shopctl search [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	if noColor {
		disableColors()
	}

	params := url.Values{}
	if query != "" {
		params.Set("q", query)
	}
	if category != "" {
		params.Set("category", category)
	}
	path := "/api/products"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	resp, err := doRequest("GET", path, nil)
	if err != nil {
		fatal("Search failed: %v", err)
	}

	token, _ := resp["session_token"].(string)
	if quiet {
		fmt.Println(token)
		return
	}

	printSuccess("Catalog loaded")
	fmt.Printf("  Session: %s%s%s\n", colorCyan, token, colorReset)

	products, _ := resp["products"].([]interface{})
	if len(products) == 0 {
		printInfo("No products matched")
		return
	}
	for _, p := range products {
		pm, ok := p.(map[string]interface{})
		if !ok {
			continue
		}
		fmt.Printf("  %s#%v%s %s%s%s  %s\n",
			colorGray, pm["id"], colorReset,
			colorBold, pm["title"], colorReset,
			formatCents(pm["price"]))
	}
}

// =============================================================================
// ADD COMMAND
// =============================================================================

func runAdd(args []string) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	commonFlags(fs)
	var productID int64
	fs.Int64Var(&productID, "product", 0, "Product id from search results (required)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: shopctl add -session TOKEN -product ID [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	if noColor {
		disableColors()
	}
	if sessionToken == "" || productID == 0 {
		fs.Usage()
		os.Exit(1)
	}

	resp, err := doRequest("POST", "/api/cart/items", map[string]interface{}{"id": productID})
	if err != nil {
		fatal("Add failed: %v", err)
	}

	if quiet {
		fmt.Println(formatCents(resp["subtotal"]))
		return
	}

	printSuccess("Added to cart")
	printCart(resp)
}

// =============================================================================
// CART COMMAND
// =============================================================================

func runCart(args []string) {
	fs := flag.NewFlagSet("cart", flag.ExitOnError)
	commonFlags(fs)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: shopctl cart -session TOKEN [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	if noColor {
		disableColors()
	}
	if sessionToken == "" {
		fs.Usage()
		os.Exit(1)
	}

	resp, err := doRequest("GET", "/api/cart", nil)
	if err != nil {
		fatal("Cart fetch failed: %v", err)
	}

	if quiet {
		fmt.Println(formatCents(resp["subtotal"]))
		return
	}

	printCart(resp)
}

// =============================================================================
// CHECKOUT COMMAND
// =============================================================================

func runCheckout(args []string) {
	fs := flag.NewFlagSet("checkout", flag.ExitOnError)
	commonFlags(fs)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: shopctl checkout -session TOKEN [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	if noColor {
		disableColors()
	}
	if sessionToken == "" {
		fs.Usage()
		os.Exit(1)
	}

	resp, err := doRequest("POST", "/api/checkout", map[string]interface{}{})
	if err != nil {
		fatal("Checkout failed: %v", err)
	}

	orderID, _ := resp["order_id"].(string)
	if quiet {
		fmt.Println(orderID)
		return
	}

	printSuccess("Order placed")
	if orderID != "" {
		fmt.Printf("  Order ID: %s%s%s\n", colorGreen, orderID, colorReset)
	}
	if status, ok := resp["status"].(map[string]interface{}); ok {
		if text, ok := status["text"].(string); ok && text != "" {
			printInfo("%s", text)
		}
	}
}

// printCart renders the lines/subtotal shape shared by cart responses.
func printCart(resp map[string]interface{}) {
	lines, _ := resp["lines"].([]interface{})
	if len(lines) == 0 {
		printInfo("Cart is empty")
		return
	}
	for _, l := range lines {
		lm, ok := l.(map[string]interface{})
		if !ok {
			continue
		}
		fmt.Printf("  %s×%v%s %s%s%s  %s\n",
			colorGray, lm["quantity"], colorReset,
			colorBold, lm["title"], colorReset,
			formatCents(lm["price"]))
	}
	fmt.Printf("  Subtotal: %s%s%s\n", colorGreen, formatCents(resp["subtotal"]), colorReset)
}

// =============================================================================
// HTTP HELPERS
// =============================================================================

func doRequest(method, path string, body interface{}) (map[string]interface{}, error) {
	var reqBody io.Reader
	var reqJSON []byte

	if body != nil {
		var err error
		reqJSON, err = json.MarshalIndent(body, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		reqBody = bytes.NewReader(reqJSON)
	}

	reqURL := storeURL + path
	req, err := http.NewRequest(method, reqURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Shopper-Agent", shopperAgent)
	if sessionToken != "" {
		req.Header.Set("X-Session-Token", sessionToken)
	}

	if !quiet {
		printRequest(method, path, reqJSON)
	}

	start := time.Now()
	resp, err := client.Do(req)
	duration := time.Since(start)

	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	// Adopt the server-assigned token so follow-up calls share the session
	if tok := resp.Header.Get("X-Session-Token"); tok != "" {
		sessionToken = tok
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if !quiet {
		printResponse(resp.StatusCode, respBody, duration)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	var result map[string]interface{}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	return result, nil
}

// =============================================================================
// OUTPUT HELPERS
// =============================================================================

func printRequest(method, path string, body []byte) {
	fmt.Printf("\n%s▶ REQUEST%s %s%s %s%s\n", colorYellow, colorReset, colorBold, method, path, colorReset)
	if body != nil {
		printJSON(body, "  ")
	}
}

func printResponse(status int, body []byte, duration time.Duration) {
	statusColor := colorGreen
	if status >= 400 {
		statusColor = colorRed
	}
	fmt.Printf("\n%s◀ RESPONSE%s %s%d%s (%v)\n", colorCyan, colorReset, statusColor, status, colorReset, duration)
	printJSON(body, "  ")
}

func printJSON(data []byte, prefix string) {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, prefix, "  "); err != nil {
		fmt.Printf("%s%s\n", prefix, string(data))
		return
	}

	output := pretty.String()
	if !verbose {
		lines := strings.Split(output, "\n")
		if len(lines) > 30 {
			lines = append(lines[:25], fmt.Sprintf("%s  %s(%d more lines, use -v for full output)%s", prefix, colorGray, len(lines)-25, colorReset))
			output = strings.Join(lines, "\n")
		}
	}
	fmt.Println(output)
}

func printSuccess(format string, args ...interface{}) {
	if !quiet {
		fmt.Printf("%s✓ %s%s\n", colorGreen, fmt.Sprintf(format, args...), colorReset)
	}
}

func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Printf("%s→ %s%s\n", colorGray, fmt.Sprintf(format, args...), colorReset)
	}
}

func formatCents(v interface{}) string {
	switch val := v.(type) {
	case float64:
		return fmt.Sprintf("$%.2f", val/100)
	case int:
		return fmt.Sprintf("$%.2f", float64(val)/100)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s✗ %s%s\n", colorRed, fmt.Sprintf(format, args...), colorReset)
	os.Exit(1)
}
