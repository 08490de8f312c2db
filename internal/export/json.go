package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/avelis/worklog/internal/store"
)

type jsonExport struct {
	ExportedAt string       `json:"exported_at"`
	Count      int          `json:"count"`
	Statuses   []jsonStatus `json:"statuses"`
}

type jsonStatus struct {
	ID              string     `json:"id"`
	TicketNumber    string     `json:"ticket_number"`
	Title           string     `json:"title"`
	Status          string     `json:"status"`
	Date            string     `json:"date"`
	EffortToday     jsonEffort `json:"effort_today"`
	TotalEffort     jsonEffort `json:"total_effort"`
	EstimatedEffort jsonEffort `json:"estimated_effort"`
	CreatedAt       string     `json:"created_at"`
	UpdatedAt       string     `json:"updated_at"`
}

type jsonEffort struct {
	Days      int    `json:"days"`
	Hours     int    `json:"hours"`
	Minutes   int    `json:"minutes"`
	Formatted string `json:"formatted"`
}

func ToJSON(statuses []store.WorkStatus, path string) error {
	out := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(statuses),
	}

	for _, ws := range statuses {
		out.Statuses = append(out.Statuses, jsonStatus{
			ID:           ws.ID,
			TicketNumber: ws.TicketNumber,
			Title:        ws.Title,
			Status:       ws.Status,
			Date:         ws.Date.Local().Format("2006-01-02"),
			EffortToday: jsonEffort{
				Days: ws.EffortToday.Days, Hours: ws.EffortToday.Hours,
				Minutes: ws.EffortToday.Minutes, Formatted: ws.EffortTodayString(),
			},
			TotalEffort: jsonEffort{
				Days: ws.TotalEffort.Days, Hours: ws.TotalEffort.Hours,
				Minutes: ws.TotalEffort.Minutes, Formatted: ws.TotalEffortString(),
			},
			EstimatedEffort: jsonEffort{
				Days: ws.EstimatedEffort.Days, Hours: ws.EstimatedEffort.Hours,
				Minutes: ws.EstimatedEffort.Minutes, Formatted: ws.EstimatedEffortString(),
			},
			CreatedAt: ws.CreatedAt.Local().Format(time.RFC3339),
			UpdatedAt: ws.UpdatedAt.Local().Format(time.RFC3339),
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
