package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/propscore/leadscore/backend/handler"
	"github.com/propscore/leadscore/backend/model"
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "List scored leads from a running server",
	Long: `Fetch scored leads and aggregate statistics from a leadscore server
and render them as a table.

Examples:
  leadscore leads
  leadscore leads --addr http://localhost:8000 --token $TOKEN`,
	RunE: runLeads,
}

var (
	leadsAddr  string
	leadsToken string
)

func init() {
	rootCmd.AddCommand(leadsCmd)
	leadsCmd.Flags().StringVar(&leadsAddr, "addr", "http://localhost:8000", "server base URL")
	leadsCmd.Flags().StringVar(&leadsToken, "token", "", "bearer token (when server auth is enabled)")
}

func runLeads(cmd *cobra.Command, args []string) error {
	client := &http.Client{Timeout: 10 * time.Second}

	var leads []handler.LeadSummary
	if err := getJSON(client, leadsAddr+"/leads", &leads); err != nil {
		return fmt.Errorf("failed to fetch leads: %w", err)
	}

	var stats model.Stats
	if err := getJSON(client, leadsAddr+"/leads/stats", &stats); err != nil {
		return fmt.Errorf("failed to fetch stats: %w", err)
	}

	if len(leads) == 0 {
		fmt.Println("No scored leads yet.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEMAIL\tINITIAL\tRERANKED\tCOMMENTS")
	fmt.Fprintln(tw, "--\t-----\t-------\t--------\t--------")
	for _, lead := range leads {
		fmt.Fprintf(tw, "%d\t%s\t%.2f\t%.2f\t%s\n",
			lead.LeadID,
			lead.Email,
			lead.InitialScore,
			lead.RerankedScore,
			truncate(lead.Comments, 50),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("Lead Statistics")
	fmt.Println(strings.Repeat("-", 30))
	fmt.Printf("Total leads:        %d\n", stats.TotalLeads)
	fmt.Printf("High intent leads:  %d\n", stats.HighIntentLeads)
	fmt.Printf("Avg initial score:  %.2f\n", stats.AvgInitialScore)
	fmt.Printf("Avg reranked score: %.2f\n", stats.AvgRerankedScore)

	return nil
}

func getJSON(client *http.Client, url string, out any) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if leadsToken != "" {
		req.Header.Set("Authorization", "Bearer "+leadsToken)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %s", resp.Status)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
