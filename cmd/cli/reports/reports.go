package reports

import (
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
	reportsCmd := &cobra.Command{
		Use:   "reports",
		Short: "Browse scan reports",
	}

	reportsCmd.AddCommand(
		listReportsCmd(),
		getReportCmd(),
	)

	root.GetRoot().AddCommand(reportsCmd)
}

func authedGet(path string) (*http.Response, error) {
	token, err := config.Token()
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest("GET", config.APIURL()+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return http.DefaultClient.Do(req)
}

// ==========================
// LIST
// ==========================
func listReportsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List reports",
		Run: func(cmd *cobra.Command, args []string) {
			resp, err := authedGet("/api/reports")
			if err != nil {
				fmt.Println(err)
				return
			}
			defer resp.Body.Close()

			var reports []models.Report
			if err := json.NewDecoder(resp.Body).Decode(&reports); err != nil {
				fmt.Println("decode response:", err)
				return
			}

			rows := make([][]interface{}, 0, len(reports))
			for _, rep := range reports {
				rows = append(rows, []interface{}{rep.ID, rep.MonitorID, rep.ItemCount, rep.CreatedAt.Format("2006-01-02 15:04"), rep.ArtifactLocation})
			}
			output.RenderTable([]string{"ID", "Monitor", "Matches", "Created", "Artifact"}, rows)
		},
	}
}

// ==========================
// GET
// ==========================
func getReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one report",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			resp, err := authedGet("/api/reports/" + args[0])
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
