package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/spf13/cobra"

	"github.com/vietddude/screencore/internal/control"
	"github.com/vietddude/screencore/internal/health"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the status of a running device",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	url := fmt.Sprintf("http://localhost:%d/health/detailed", healthPort)

	client := http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		slog.Error("Failed to reach device", "url", url, "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var report struct {
		Status health.SystemStatus `json:"status"`
		Device control.Snapshot    `json:"device"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		slog.Error("Failed to decode status", "error", err)
		os.Exit(1)
	}

	snap := report.Device
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Status", "State", "Fallback", "Tick", "Mem Live", "Mem Peak", "Faults", "Fatal")
	table.Append(
		string(report.Status),
		snap.State,
		fmt.Sprintf("%t", snap.UseFallback),
		fmt.Sprintf("%d", snap.Tick),
		fmt.Sprintf("%d B", snap.Memory.TotalAllocated),
		fmt.Sprintf("%d B", snap.Memory.PeakAllocated),
		fmt.Sprintf("%d", snap.FaultTotal),
		fmt.Sprintf("%d", snap.FaultFatal),
	)
	table.Render()

	fmt.Printf("\nDisplay: %s\n", snap.Display)

	if vmem, err := mem.VirtualMemory(); err == nil {
		fmt.Printf("Host memory: %d MiB used / %d MiB total\n",
			vmem.Used/1024/1024, vmem.Total/1024/1024)
	}
}
