package monitors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/crucial707/threatwatch/cmd/cli/config"
	"github.com/crucial707/threatwatch/cmd/cli/output"
	"github.com/crucial707/threatwatch/cmd/cli/root"
	"github.com/crucial707/threatwatch/internal/models"
)

// ==========================
// CLI Command Init
// ==========================
func init() {
	monitorsCmd := &cobra.Command{
		Use:   "monitors",
		Short: "Manage monitors",
	}

	monitorsCmd.AddCommand(
		listMonitorsCmd(),
		createMonitorCmd(),
		getMonitorCmd(),
		deactivateMonitorCmd(),
	)

	root.GetRoot().AddCommand(monitorsCmd)
}

func authedRequest(method, path string, body []byte) (*http.Response, error) {
	token, err := config.Token()
	if err != nil {
		return nil, err
	}
	var req *http.Request
	if body != nil {
		req, err = http.NewRequest(method, config.APIURL()+path, bytes.NewReader(body))
	} else {
		req, err = http.NewRequest(method, config.APIURL()+path, nil)
	}
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return http.DefaultClient.Do(req)
}

// ==========================
// LIST
// ==========================
func listMonitorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List monitors",
		Run: func(cmd *cobra.Command, args []string) {
			resp, err := authedRequest("GET", "/api/monitors", nil)
			if err != nil {
				fmt.Println(err)
				return
			}
			defer resp.Body.Close()

			var monitors []models.Monitor
			if err := json.NewDecoder(resp.Body).Decode(&monitors); err != nil {
				fmt.Println("decode response:", err)
				return
			}

			rows := make([][]interface{}, 0, len(monitors))
			for _, m := range monitors {
				rows = append(rows, []interface{}{m.ID, m.Query, m.Frequency, m.NextRunAt.Format("2006-01-02 15:04"), m.Active})
			}
			output.RenderTable([]string{"ID", "Query", "Frequency", "Next Run", "Active"}, rows)
		},
	}
}

// ==========================
// CREATE
// ==========================
func createMonitorCmd() *cobra.Command {

	var query string
	var frequency string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a monitor",
		Run: func(cmd *cobra.Command, args []string) {
			if !models.ValidFrequency(frequency) {
				fmt.Println("frequency must be daily, weekly, or monthly")
				return
			}
			payload := map[string]string{
				"query":     query,
				"frequency": frequency,
			}
			body, _ := json.Marshal(payload)

			resp, err := authedRequest("POST", "/api/monitors", body)
			if err != nil {
				fmt.Println(err)
				return
			}
			defer resp.Body.Close()

			var out any
			json.NewDecoder(resp.Body).Decode(&out)
			b, _ := json.MarshalIndent(out, "", "  ")
			fmt.Println(string(b))
		},
	}

	cmd.Flags().StringVar(&query, "query", "", "search query to monitor")
	cmd.Flags().StringVar(&frequency, "frequency", "weekly", "scan frequency: daily, weekly, monthly")
	cmd.MarkFlagRequired("query")

	return cmd
}

// ==========================
// GET
// ==========================
func getMonitorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one monitor",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			resp, err := authedRequest("GET", "/api/monitors/"+args[0], nil)
			if err != nil {
				fmt.Println(err)
				return
			}
			defer resp.Body.Close()

			var out any
			json.NewDecoder(resp.Body).Decode(&out)
			b, _ := json.MarshalIndent(out, "", "  ")
			fmt.Println(string(b))
		},
	}
}

// ==========================
// DEACTIVATE
// ==========================
func deactivateMonitorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <id>",
		Short: "Deactivate a monitor",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			resp, err := authedRequest("DELETE", "/api/monitors/"+args[0], nil)
			if err != nil {
				fmt.Println(err)
				return
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusNoContent {
				fmt.Println("monitor deactivated")
				return
			}
			var out any
			json.NewDecoder(resp.Body).Decode(&out)
			b, _ := json.MarshalIndent(out, "", "  ")
			fmt.Println(string(b))
		},
	}
}
