package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/avelis/worklog/internal/effort"
	"github.com/avelis/worklog/internal/store"
)

const dateLayout = "2006-01-02"

// recordFormModel drives the create/edit form for one work-status record.
// Field values live behind pointers so they survive bubbletea value copies.
type recordFormModel struct {
	store  *store.Store
	userID string
	width  int

	active    bool
	form      *huh.Form
	editingID string // empty while creating

	fDate        *string
	fTicket      *string
	fTitle       *string
	fStatus      *string
	fEffortToday *string
	fTotalEffort *string
	fEstimated   *string
}

func newRecordFormModel(s *store.Store) recordFormModel {
	date, ticket, title, status := "", "", "", ""
	today, total, estimated := "", "", ""
	return recordFormModel{
		store:        s,
		fDate:        &date,
		fTicket:      &ticket,
		fTitle:       &title,
		fStatus:      &status,
		fEffortToday: &today,
		fTotalEffort: &total,
		fEstimated:   &estimated,
	}
}

func (f *recordFormModel) setUser(userID string) {
	f.userID = userID
}

func (f recordFormModel) showCreate() (recordFormModel, tea.Cmd) {
	*f.fDate = time.Now().Format(dateLayout)
	*f.fTicket = f.store.TicketPrefix()
	*f.fTitle = ""
	*f.fStatus = store.DefaultStatus
	*f.fEffortToday = ""
	*f.fTotalEffort = ""
	*f.fEstimated = ""
	f.editingID = ""
	return f.show()
}

func (f recordFormModel) showEdit(ws store.WorkStatus) (recordFormModel, tea.Cmd) {
	*f.fDate = ws.Date.Local().Format(dateLayout)
	*f.fTicket = ws.TicketNumber
	*f.fTitle = ws.Title
	*f.fStatus = ws.Status
	*f.fEffortToday = ws.EffortTodayString()
	*f.fTotalEffort = ws.TotalEffortString()
	*f.fEstimated = ws.EstimatedEffortString()
	f.editingID = ws.ID
	return f.show()
}

func (f recordFormModel) show() (recordFormModel, tea.Cmd) {
	statusOptions := make([]huh.Option[string], len(store.Statuses))
	for i, s := range store.Statuses {
		statusOptions[i] = huh.NewOption(s, s)
	}

	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Date").Description(dateLayout).
				Value(f.fDate).Validate(validateDate),
			huh.NewInput().Title("Ticket Number").
				Value(f.fTicket).Validate(f.validateTicket),
			huh.NewInput().Title("Title").
				Value(f.fTitle).Validate(requireField("Title")),
			huh.NewSelect[string]().Title("Status").
				Options(statusOptions...).Value(f.fStatus),
		),
		huh.NewGroup(
			huh.NewInput().Title("Effort Today").Description("e.g. 1d 2h 30m").
				Value(f.fEffortToday).Validate(validateEffort("Effort Today")),
			huh.NewInput().Title("Total Effort").Description("e.g. 1d 2h 30m").
				Value(f.fTotalEffort).Validate(validateEffort("Total Effort")),
			huh.NewInput().Title("Estimated Effort").Description("e.g. 1d 2h 30m").
				Value(f.fEstimated).Validate(validateEffort("Estimated Effort")),
		),
	).WithShowHelp(true).WithShowErrors(true)

	f.active = true
	return f, f.form.Init()
}

func validateDate(v string) error {
	if strings.TrimSpace(v) == "" {
		return errors.New("Date is required")
	}
	if _, err := time.ParseInLocation(dateLayout, strings.TrimSpace(v), time.Local); err != nil {
		return errors.New("Date must look like 2006-01-02")
	}
	return nil
}

func requireField(label string) func(string) error {
	return func(v string) error {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%s is required", label)
		}
		return nil
	}
}

func validateEffort(label string) func(string) error {
	return func(v string) error {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%s is required", label)
		}
		if !effort.Valid(v) {
			return fmt.Errorf("%s must be in format like '1d 2h 30m'", label)
		}
		return nil
	}
}

// validateTicket enforces the configured prefix and warns about duplicate
// ticket numbers while the user is still in the form, the same check that
// runs again inside the write transaction.
func (f recordFormModel) validateTicket(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return errors.New("Ticket number is required")
	}
	if prefix := f.store.TicketPrefix(); prefix != "" {
		if !strings.HasPrefix(v, prefix) || v == prefix {
			return errors.New("Please complete the ticket number")
		}
	}
	dup, err := f.store.CheckDuplicateTicket(f.userID, v, f.editingID)
	if err == nil && dup {
		return errors.New("Another work status with this ticket number already exists")
	}
	return nil
}

func (f recordFormModel) update(msg tea.Msg) (recordFormModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			f.active = false
			f.form = nil
			return f, nil
		}
	}

	form, cmd := f.form.Update(msg)
	if m, ok := form.(*huh.Form); ok {
		f.form = m
	}

	if f.form.State == huh.StateCompleted {
		f.active = false
		return f, f.submit()
	}

	return f, cmd
}

func (f recordFormModel) submit() tea.Cmd {
	editingID := f.editingID
	fields := store.StatusFields{
		TicketNumber:    strings.TrimSpace(*f.fTicket),
		Title:           strings.TrimSpace(*f.fTitle),
		Status:          *f.fStatus,
		EffortToday:     effort.Parse(*f.fEffortToday),
		TotalEffort:     effort.Parse(*f.fTotalEffort),
		EstimatedEffort: effort.Parse(*f.fEstimated),
	}
	fields.Date, _ = time.ParseInLocation(dateLayout, strings.TrimSpace(*f.fDate), time.Local)

	return func() tea.Msg {
		var err error
		if editingID == "" {
			_, err = f.store.CreateStatus(f.userID, fields)
		} else {
			_, err = f.store.UpdateStatus(editingID, f.userID, fields)
		}
		if err != nil {
			return statusMsg{text: err.Error(), isError: true}
		}
		return recordSavedMsg{created: editingID == "", ticket: fields.TicketNumber}
	}
}

func (f recordFormModel) view() string {
	title := titleStyle.Render("New Work Status")
	if f.editingID != "" {
		title = titleStyle.Render("Edit Work Status")
	}
	formView := f.form.View()
	content := lipgloss.JoinVertical(lipgloss.Left, title, "", formView)
	return panelStyle.Width(f.width - 4).Render(content)
}
