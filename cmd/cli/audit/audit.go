package audit

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
	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect the scan audit trail",
	}

	auditCmd.AddCommand(listAuditCmd())

	root.GetRoot().AddCommand(auditCmd)
}

// ==========================
// LIST
// ==========================
func listAuditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recent scan attempts",
		Run: func(cmd *cobra.Command, args []string) {
			token, err := config.Token()
			if err != nil {
				fmt.Println(err)
				return
			}

			req, _ := http.NewRequest("GET", config.APIURL()+"/api/audit", nil)
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				fmt.Println(err)
				return
			}
			defer resp.Body.Close()

			var records []models.SearchAuditRecord
			if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
				fmt.Println("decode response:", err)
				return
			}

			rows := make([][]interface{}, 0, len(records))
			for _, rec := range records {
				rows = append(rows, []interface{}{rec.ID, rec.MonitorID, rec.Status, rec.Detail, rec.CreatedAt.Format("2006-01-02 15:04")})
			}
			output.RenderTable([]string{"ID", "Monitor", "Status", "Detail", "Created"}, rows)
		},
	}
}
