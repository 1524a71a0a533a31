package main

import (
	"fmt"
	"os"

	"github.com/crucial707/threatwatch/cmd/cli/root"

	_ "github.com/crucial707/threatwatch/cmd/cli/audit"
	_ "github.com/crucial707/threatwatch/cmd/cli/monitors"
	_ "github.com/crucial707/threatwatch/cmd/cli/reports"
)

func main() {
	if err := root.GetRoot().Execute(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
