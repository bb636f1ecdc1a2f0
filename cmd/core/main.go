// Package main provides the address book command-line client.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/kimhsiao/addressbook/internal/config"
	"github.com/kimhsiao/addressbook/internal/db"
	"github.com/kimhsiao/addressbook/internal/export"
	"github.com/kimhsiao/addressbook/internal/export/scheduler"
	"github.com/kimhsiao/addressbook/internal/logging"
	"github.com/kimhsiao/addressbook/internal/models"
	"github.com/kimhsiao/addressbook/internal/services"
)

// Version is set at build time
var Version = "0.1.0"

const usage = `usage: addressbook <command> [arguments]

commands:
  version                 print the version
  list [-q term] [-sort field] [-filter kind -value v]
                          list contacts
  add -first f -last l -location loc -phone p -email e
                          add a contact
  delete <id>...          delete contacts
  copy <id>               duplicate a contact
  recent [-days n]        contacts modified in the last n days
  range <start> <end>     contacts created between YYYY-MM-DD dates
  stats                   contact statistics and age analysis
  print                   plain-text contact listing
  import <file>           import contacts from CSV
  export [file]           export contacts to CSV
  backup                  write a backup into the backup directory
  theme [light|dark]      show or set the saved theme
`

// cli binds the commands to their services.
type cli struct {
	contacts services.ContactManager
	transfer export.Transfer
	settings db.SettingsRepository
	backups  *scheduler.Scheduler
	username string
	out      io.Writer
}

func (c *cli) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command\n%s", usage)
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "version":
		fmt.Fprintf(c.out, "Address Book v%s\n", Version)
		return nil
	case "list":
		return c.list(ctx, rest)
	case "add":
		return c.add(ctx, rest)
	case "delete":
		return c.delete(ctx, rest)
	case "copy":
		return c.duplicate(ctx, rest)
	case "recent":
		return c.recent(ctx, rest)
	case "range":
		return c.dateRange(ctx, rest)
	case "stats":
		return c.stats(ctx)
	case "print":
		contacts, err := c.contacts.ListContacts(ctx)
		if err != nil {
			return err
		}
		return export.WriteListing(c.out, contacts)
	case "import":
		return c.importFile(ctx, rest)
	case "export":
		return c.exportFile(ctx, rest)
	case "backup":
		result, err := c.backups.RunOnce(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Backup written to %s (%d contacts)\n", result.FilePath, result.ItemCount)
		return nil
	case "theme":
		return c.theme(ctx, rest)
	case "help", "-h", "--help":
		fmt.Fprint(c.out, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func (c *cli) list(ctx context.Context, args []string) error {
	fs := newFlagSet("list")
	term := fs.String("q", "", "search term")
	sortBy := fs.String("sort", "", "sort field (first_name, last_name, location, phone, email)")
	filterBy := fs.String("filter", "", "filter kind (location, email_domain, phone_prefix)")
	value := fs.String("value", "", "filter value")
	if err := fs.Parse(args); err != nil {
		return err
	}

	contacts, err := c.contacts.ListContacts(ctx)
	if err != nil {
		return err
	}
	if *term != "" {
		contacts = services.Search(contacts, *term)
	}
	if *filterBy != "" {
		kind, err := services.ParseFilterKind(*filterBy)
		if err != nil {
			return err
		}
		contacts = services.Filter(contacts, kind, *value)
	}
	if *sortBy != "" {
		field, err := services.ParseSortField(*sortBy)
		if err != nil {
			return err
		}
		contacts = services.Sort(contacts, field)
	}
	return c.writeTable(contacts)
}

func (c *cli) writeTable(contacts []*models.Contact) error {
	if len(contacts) == 0 {
		fmt.Fprintln(c.out, "No contacts found.")
		return nil
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tLOCATION\tPHONE\tEMAIL\tUPDATED")
	for _, contact := range contacts {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			contact.ID, contact.FullName(), contact.Location, contact.Phone, contact.Email, contact.UpdatedAtDisplay())
	}
	return tw.Flush()
}

func (c *cli) add(ctx context.Context, args []string) error {
	fs := newFlagSet("add")
	first := fs.String("first", "", "first name")
	last := fs.String("last", "", "last name")
	location := fs.String("location", "", "location")
	phone := fs.String("phone", "", "phone number in +<country><number> form")
	email := fs.String("email", "", "email address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	contact := services.CreateFromFields(*first, *last, *location, *phone, *email)
	id, err := c.contacts.AddContact(ctx, contact)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Added contact %d\n", id)
	return nil
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("bad contact id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (c *cli) delete(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("delete requires at least one id")
	}
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}

	summary := c.contacts.DeleteContacts(ctx, ids)
	fmt.Fprintf(c.out, "Deleted %d of %d contacts\n", summary.Deleted, summary.Requested)
	if summary.Failed > 0 {
		for id, msg := range summary.Errors {
			fmt.Fprintf(c.out, "  %d: %s\n", id, msg)
		}
		return fmt.Errorf("%d deletions failed", summary.Failed)
	}
	return nil
}

func (c *cli) duplicate(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("copy requires exactly one id")
	}
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	contact, err := c.contacts.DuplicateContact(ctx, ids[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Copied contact %d to %d\n", ids[0], contact.ID)
	return nil
}

func (c *cli) recent(ctx context.Context, args []string) error {
	fs := newFlagSet("recent")
	days := fs.Int("days", 7, "look-back window in days")
	if err := fs.Parse(args); err != nil {
		return err
	}
	contacts, err := c.contacts.RecentlyModified(ctx, *days)
	if err != nil {
		return err
	}
	return c.writeTable(contacts)
}

func (c *cli) dateRange(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("range requires a start and an end date")
	}
	start, end, err := services.ParseDateRange(args[0], args[1], nil)
	if err != nil {
		return err
	}
	contacts, err := c.contacts.CreatedBetween(ctx, start, end)
	if err != nil {
		return err
	}
	return c.writeTable(contacts)
}

func (c *cli) stats(ctx context.Context) error {
	stats, err := c.contacts.Statistics(ctx)
	if err != nil {
		return err
	}
	ages, err := c.contacts.AgeAnalysis(ctx)
	if err != nil {
		return err
	}

	oldest := (&models.Contact{CreatedAt: stats.OldestContact}).CreatedAtDisplay()
	newest := (&models.Contact{CreatedAt: stats.NewestContact}).CreatedAtDisplay()

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Total contacts:\t%d\n", stats.TotalContacts)
	fmt.Fprintf(tw, "Created this week:\t%d\n", stats.CreatedThisWeek)
	fmt.Fprintf(tw, "Modified this week:\t%d\n", stats.ModifiedThisWeek)
	fmt.Fprintf(tw, "Oldest contact:\t%s\n", oldest)
	fmt.Fprintf(tw, "Newest contact:\t%s\n", newest)
	fmt.Fprintf(tw, "Average age (days):\t%.1f\n", ages.AverageAge)
	fmt.Fprintf(tw, "Recent (< 30 days):\t%d\n", ages.RecentCount)
	fmt.Fprintf(tw, "Old (> 365 days):\t%d\n", ages.OldCount)
	return tw.Flush()
}

func (c *cli) importFile(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("import requires a file")
	}
	result, err := c.transfer.ImportFile(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Imported %d, skipped %d duplicates, %d errors\n", result.Imported, result.Skipped, result.Errors)
	for _, msg := range result.Messages {
		fmt.Fprintf(c.out, "  %s\n", msg)
	}
	return nil
}

func (c *cli) exportFile(ctx context.Context, args []string) error {
	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	result, err := c.transfer.ExportFile(ctx, path)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Exported %d contacts to %s\n", result.ItemCount, result.FilePath)
	return nil
}

func (c *cli) theme(ctx context.Context, args []string) error {
	if len(args) == 0 {
		theme, err := c.settings.GetTheme(ctx, c.username)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.out, theme)
		return nil
	}

	theme := strings.ToLower(strings.TrimSpace(args[0]))
	if theme != models.ThemeLight && theme != models.ThemeDark {
		return fmt.Errorf("theme must be light or dark")
	}
	if err := c.settings.SaveTheme(ctx, c.username, theme); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Theme set to %s\n", theme)
	return nil
}

// newCLI wires the command handlers over a connection provider.
func newCLI(cfg *config.Config, provider *db.Provider, out io.Writer) (*cli, error) {
	interval, err := scheduler.ParseInterval(cfg.Backup.Interval)
	if err != nil {
		return nil, err
	}
	contacts := services.NewContactService(db.NewContactStore(provider))
	transfer := export.NewService(contacts)
	backups := scheduler.New(transfer, scheduler.Config{
		Interval:       interval,
		RetentionCount: cfg.Backup.Retention,
		Dir:            cfg.Backup.Dir,
	})
	return &cli{
		contacts: contacts,
		transfer: transfer,
		settings: db.NewSettingsStore(provider),
		backups:  backups,
		username: cfg.Username,
		out:      out,
	}, nil
}

func main() {
	args := os.Args[1:]
	if len(args) > 0 && args[0] == "version" {
		fmt.Printf("Address Book v%s\n", Version)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		config.Exitf("addressbook: %v", err)
	}
	logging.Init(os.Stderr, logging.ParseLevel(cfg.LogLevel))

	provider, err := db.NewProvider(cfg.Database)
	if err != nil {
		config.Exitf("addressbook: %v", err)
	}
	defer provider.Close()

	c, err := newCLI(cfg, provider, os.Stdout)
	if err != nil {
		config.Exitf("addressbook: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := c.run(ctx, args); err != nil {
		stop()
		provider.Close()
		config.Exitf("addressbook: %v", err)
	}
}
