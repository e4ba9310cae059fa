package console

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/noah-isme/olympiad-applications/internal/models"
)

const loadingMessage = "Loading applications..."

// View is a snapshot of the board for a single render.
type View struct {
	Visible  []models.Application
	Summary  models.StatusSummary
	Filter   models.ApplicationFilter
	Expanded *models.Application
}

// Renderer prints the applications table and the detail block.
type Renderer struct {
	out   io.Writer
	tones map[models.StatusTone]*color.Color
	title *color.Color
	warn  *color.Color
}

// NewRenderer writes to out. colorize forces ANSI colours on or off
// regardless of whether out is a terminal.
func NewRenderer(out io.Writer, colorize bool) *Renderer {
	r := &Renderer{
		out: out,
		tones: map[models.StatusTone]*color.Color{
			models.ToneSuccess: color.New(color.FgGreen, color.Bold),
			models.ToneWarning: color.New(color.FgYellow, color.Bold),
			models.ToneDanger:  color.New(color.FgRed, color.Bold),
		},
		title: color.New(color.FgCyan, color.Bold),
		warn:  color.New(color.FgRed),
	}
	for _, c := range r.colors() {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

func (r *Renderer) colors() []*color.Color {
	out := []*color.Color{r.title, r.warn}
	for _, c := range r.tones {
		out = append(out, c)
	}
	return out
}

// Loading prints the indicator shown while the initial load is outstanding.
func (r *Renderer) Loading() {
	fmt.Fprintln(r.out, loadingMessage)
}

// Badge renders the status label in its tone.
func (r *Renderer) Badge(status models.ApplicationStatus) string {
	return r.tones[status.Tone()].Sprint(status.Label())
}

// Board renders the summary line, the visible rows and, when the expanded
// record is visible, its detail block.
func (r *Renderer) Board(view View) {
	fmt.Fprintln(r.out, r.title.Sprint("Olympiad applications"))
	fmt.Fprintf(r.out, "%d total | %d approved | %d pending | %d rejected | status=%s search=%q\n",
		view.Summary.Total, view.Summary.Approved, view.Summary.Pending, view.Summary.Rejected,
		view.Filter.Status, view.Filter.Search)

	if len(view.Visible) == 0 {
		fmt.Fprintln(r.out, "No applications match the current filters.")
		return
	}

	var expandedID int64
	if view.Expanded != nil {
		expandedID = view.Expanded.ID
	}

	table := tablewriter.NewWriter(r.out)
	table.SetHeader([]string{"", "ID", "Student", "CI", "Area", "Category", "School", "Status"})
	table.SetAutoWrapText(false)
	for _, app := range view.Visible {
		marker := "+"
		if app.ID == expandedID {
			marker = "-"
		}
		table.Append([]string{
			marker,
			strconv.FormatInt(app.ID, 10),
			app.StudentName,
			app.CI,
			app.Area,
			app.Category,
			app.School,
			r.Badge(app.Status),
		})
	}
	table.Render()

	if view.Expanded != nil && containsID(view.Visible, expandedID) {
		r.Detail(*view.Expanded)
	}
}

// Detail prints the contact and notes panel for app.
func (r *Renderer) Detail(app models.Application) {
	registered := app.RegistrationDate
	if t, ok := app.RegisteredOn(); ok {
		registered = t.Format("02/01/2006")
	}
	notes := app.NotesText()
	if strings.TrimSpace(notes) == "" {
		notes = "-"
	}

	fmt.Fprintln(r.out, r.title.Sprintf("Application #%d", app.ID))
	rows := [][2]string{
		{"Student", app.StudentName},
		{"Registered", registered},
		{"Status", r.Badge(app.Status)},
		{"Email", orDash(app.MailtoLink())},
		{"Phone", orDash(app.TelLink())},
		{"Notes", notes},
	}
	for _, row := range rows {
		fmt.Fprintf(r.out, "  %-11s %s\n", row[0]+":", row[1])
	}
}

// Notice prints a one-line message.
func (r *Renderer) Notice(format string, args ...interface{}) {
	fmt.Fprintf(r.out, format+"\n", args...)
}

// Warning prints a one-line message in the warning colour.
func (r *Renderer) Warning(format string, args ...interface{}) {
	fmt.Fprintln(r.out, r.warn.Sprintf(format, args...))
}

// Help lists the available commands.
func (r *Renderer) Help() {
	fmt.Fprint(r.out, helpText)
}

const helpText = `Commands:
  search [text]               set or clear the search term (taken verbatim)
  status <all|approved|pending|rejected>
  expand <id>                 open or close the detail panel
  set-status <id> <status>    change an application's status
  notes <id> [text]           replace notes verbatim (empty clears them)
  list                        render the table again
  help                        show this help
  quit                        exit
`

func containsID(apps []models.Application, id int64) bool {
	for _, app := range apps {
		if app.ID == id {
			return true
		}
	}
	return false
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
