// Package console is the interactive menu driver of the roll-call tool.
// It reads one answer per line, calls the command and query handlers and
// prints their results.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/alem-hub/rollcall/internal/application/command"
	"github.com/alem-hub/rollcall/internal/application/query"
	"github.com/alem-hub/rollcall/internal/domain/shared"
	"github.com/alem-hub/rollcall/internal/domain/student"
	"github.com/alem-hub/rollcall/pkg/timeutil"
)

// Handlers are the operations the menu drives.
type Handlers struct {
	AddStudent   *command.AddStudentHandler
	ImportRoster *command.ImportRosterHandler
	PickStudent  *command.PickStudentHandler
	ResetCycle   *command.ResetCycleHandler
	ClearHistory *command.ClearHistoryHandler

	// ExportReport enables menu option 10 when set.
	ExportReport *command.ExportReportHandler

	GetHistory *query.GetHistoryHandler
	GetStats   *query.GetStatsHandler
	GetGroups  *query.GetGroupsHandler
}

// Config tunes the console.
type Config struct {
	// Location renders call timestamps. Nil means local time.
	Location *time.Location

	// Now names default export files.
	Now func() time.Time

	// HistoryPageSize is used when the history prompt is left empty.
	// Zero shows everything.
	HistoryPageSize int

	Logger *slog.Logger
}

// Console runs the menu loop over a line-oriented input.
type Console struct {
	in       *bufio.Reader
	out      io.Writer
	h        Handlers
	loc      *time.Location
	now      func() time.Time
	pageSize int
	logger   *slog.Logger
}

// New creates a Console reading answers from in and printing to out.
func New(in io.Reader, out io.Writer, h Handlers, cfg Config) *Console {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Console{
		in:       bufio.NewReader(in),
		out:      out,
		h:        h,
		loc:      timeutil.Location(cfg.Location),
		now:      cfg.Now,
		pageSize: max(cfg.HistoryPageSize, 0),
		logger:   cfg.Logger.With("component", "console"),
	}
}

// LoadDefaultRoster imports path and reports the outcome. A missing or
// unreadable file is reported, not returned.
func (c *Console) LoadDefaultRoster(ctx context.Context, path string) {
	if path == "" {
		return
	}
	res, err := c.h.ImportRoster.Handle(ctx, command.ImportRosterCommand{Source: path})
	if err != nil {
		c.logger.DebugContext(ctx, "default roster not loaded", "path", path, "error", err)
		res = nil
	}
	RenderDefaultRoster(c.out, path, res)
}

// Run shows the menu until the user exits, the input ends or ctx is done.
func (c *Console) Run(ctx context.Context) error {
	defer fmt.Fprintln(c.out, MsgGoodbye)

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		RenderMenu(c.out, c.h.ExportReport != nil)
		line, err := c.readLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(c.out)
				return nil
			}
			return err
		}

		option, convErr := strconv.Atoi(line)
		if convErr != nil {
			fmt.Fprintln(c.out, MsgInvalidInput)
			continue
		}
		if option == 0 {
			return nil
		}

		if err := c.dispatch(ctx, option); err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(c.out)
				return nil
			}
			return err
		}
	}
}

// dispatch runs one menu option. Only input errors are returned; handler
// failures are printed.
func (c *Console) dispatch(ctx context.Context, option int) error {
	switch option {
	case 1:
		return c.addStudent(ctx)
	case 2:
		c.pick(ctx, "")
	case 3:
		return c.pickGroup(ctx)
	case 4:
		return c.showHistory(ctx)
	case 5:
		c.showStats(ctx)
	case 6:
		c.showGroups(ctx)
	case 7:
		if err := c.h.ResetCycle.Handle(ctx); err != nil {
			c.fail(ctx, "reset cycle", err)
			return nil
		}
		fmt.Fprintln(c.out, "Cycle reset.")
	case 8:
		if _, err := c.h.ClearHistory.Handle(ctx); err != nil {
			c.fail(ctx, "clear history", err)
			return nil
		}
		fmt.Fprintln(c.out, "History cleared.")
	case 9:
		return c.importRoster(ctx)
	case 10:
		if c.h.ExportReport == nil {
			fmt.Fprintln(c.out, MsgUnknownOption)
			return nil
		}
		return c.exportReport(ctx)
	default:
		fmt.Fprintln(c.out, MsgUnknownOption)
	}
	return nil
}

func (c *Console) addStudent(ctx context.Context) error {
	name, err := c.prompt("Student name: ")
	if err != nil {
		return err
	}
	group, err := c.prompt("Group name: ")
	if err != nil {
		return err
	}
	if name == "" || group == "" {
		fmt.Fprintln(c.out, "Name and group cannot be empty.")
		return nil
	}

	_, err = c.h.AddStudent.Handle(ctx, command.AddStudentCommand{Name: name, Group: group})
	switch {
	case err == nil:
		fmt.Fprintln(c.out, "Student added.")
	case errors.Is(err, shared.ErrDuplicateStudent):
		fmt.Fprintln(c.out, "Student already exists.")
	case errors.Is(err, shared.ErrInvalidStudent):
		fmt.Fprintln(c.out, "Name and group cannot be empty.")
	default:
		c.fail(ctx, "add student", err)
	}
	return nil
}

func (c *Console) pickGroup(ctx context.Context) error {
	group, err := c.prompt("Group to call: ")
	if err != nil {
		return err
	}
	if group == "" {
		fmt.Fprintln(c.out, "Group name cannot be empty.")
		return nil
	}
	c.pick(ctx, group)
	return nil
}

func (c *Console) pick(ctx context.Context, group string) {
	res, err := c.h.PickStudent.Handle(ctx, command.PickStudentCommand{Group: group})
	if err != nil {
		if errors.Is(err, shared.ErrNoEligibleStudents) {
			if group == "" {
				fmt.Fprintln(c.out, MsgNoStudents)
			} else {
				fmt.Fprintln(c.out, MsgGroupExhausted)
			}
			return
		}
		c.fail(ctx, "pick", err)
		return
	}
	RenderPick(c.out, res)
}

func (c *Console) showHistory(ctx context.Context) error {
	answer, err := c.prompt("How many recent records to show (0 = all): ")
	if err != nil {
		return err
	}

	limit := c.pageSize
	if answer != "" {
		n, convErr := strconv.Atoi(answer)
		if convErr != nil || n < 0 {
			fmt.Fprintln(c.out, MsgInvalidInput)
			return nil
		}
		limit = n
	}

	res, err := c.h.GetHistory.Handle(ctx, query.GetHistoryQuery{Limit: limit})
	if err != nil {
		c.fail(ctx, "history", err)
		return nil
	}
	RenderHistory(c.out, res, c.loc)
	return nil
}

func (c *Console) showStats(ctx context.Context) {
	res, err := c.h.GetStats.Handle(ctx)
	if err != nil {
		c.fail(ctx, "stats", err)
		return
	}
	RenderStats(c.out, res)
}

func (c *Console) showGroups(ctx context.Context) {
	res, err := c.h.GetGroups.Handle(ctx)
	if err != nil {
		c.fail(ctx, "groups", err)
		return
	}
	RenderGroups(c.out, res)
}

func (c *Console) importRoster(ctx context.Context) error {
	path, err := c.prompt("CSV file path (name,group per line): ")
	if err != nil {
		return err
	}
	if path == "" {
		fmt.Fprintln(c.out, "Path cannot be empty.")
		return nil
	}

	res, err := c.h.ImportRoster.Handle(ctx, command.ImportRosterCommand{Source: path})
	if err != nil {
		if errors.Is(err, shared.ErrSourceUnreadable) {
			fmt.Fprintln(c.out, "Failed to open file.")
			return nil
		}
		c.fail(ctx, "import", err)
		return nil
	}
	RenderImport(c.out, res)
	return nil
}

func (c *Console) exportReport(ctx context.Context) error {
	def := timeutil.ExportFileName(c.now(), c.loc)
	path, err := c.prompt(fmt.Sprintf("Export file [%s]: ", def))
	if err != nil {
		return err
	}
	if path == "" {
		path = def
	}

	res, err := c.h.ExportReport.Handle(ctx, command.ExportReportCommand{Path: path})
	if err != nil {
		c.fail(ctx, "export", err)
		return nil
	}
	fmt.Fprintf(c.out, "Report written to %s (%d students, %d calls).\n", res.Path, res.Students, res.Calls)
	return nil
}

// fail prints a short message and logs the full error.
func (c *Console) fail(ctx context.Context, op string, err error) {
	c.logger.ErrorContext(ctx, "operation failed", "op", op, "error", err)
	fmt.Fprintf(c.out, "Could not %s: %v\n", op, err)
}

func (c *Console) prompt(text string) (string, error) {
	fmt.Fprint(c.out, text)
	return c.readLine()
}

// readLine returns the next trimmed line. A final line without a newline is
// still returned; io.EOF comes only once input is exhausted.
func (c *Console) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return student.Trim(strings.TrimSuffix(line, "\n")), nil
}
