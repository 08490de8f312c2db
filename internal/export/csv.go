package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/avelis/worklog/internal/store"
)

func ToCSV(statuses []store.WorkStatus, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	header := []string{"ID", "Ticket", "Title", "Status", "Date", "Effort Today", "Total Effort", "Estimated Effort", "Created At"}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, ws := range statuses {
		row := []string{
			ws.ID,
			ws.TicketNumber,
			ws.Title,
			ws.Status,
			ws.Date.Local().Format("2006-01-02"),
			ws.EffortTodayString(),
			ws.TotalEffortString(),
			ws.EstimatedEffortString(),
			ws.CreatedAt.Local().Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}
