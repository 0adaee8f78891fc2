package cli

import (
	"encoding/json"
	"fmt"
	"os"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"error": err.Error()})
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case AuthResult:
		o.printAuthResult(v)
	case Standings:
		o.printStandings(v)
	case WinsResult:
		fmt.Printf("%s: %d wins\n", v.Username, v.Wins)
	case HealthResult:
		fmt.Printf("Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printAuthResult(r AuthResult) {
	fmt.Printf("Logged in as %s\n", r.Username)
	fmt.Println("Session token saved")
}

func (o *Output) printStandings(s Standings) {
	if len(s.Standings) == 0 {
		fmt.Println("No wins recorded yet")
		return
	}
	for i, entry := range s.Standings {
		fmt.Printf("%3d. %-20s %d\n", i+1, entry.Username, entry.Wins)
	}
}

// AuthResult is what the auth commands print after saving the token
type AuthResult struct {
	Username string `json:"username"`
}

// Standings mirrors the leaderboard document
type Standings struct {
	Standings []StandingEntry `json:"standings"`
}

type StandingEntry struct {
	Username string `json:"username"`
	Wins     int    `json:"wins"`
}

// WinsResult mirrors the per-player wins document
type WinsResult struct {
	Username string `json:"username"`
	Wins     int    `json:"wins"`
}

// HealthResult mirrors the health endpoint response
type HealthResult struct {
	Status string `json:"status"`
}
