package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/eventdrop/internal/client/client"
	"github.com/dmitrijs2005/eventdrop/internal/client/config"
	"github.com/dmitrijs2005/eventdrop/internal/sizex"
)

var ErrUsage = errors.New("usage: eventctl [-s url] [-p password] <create-event|close-event|list-events|quota|upload> [args]")

// API is the subset of *client.Client used by the commands.
type API interface {
	CreateEvent(ctx context.Context, name string) (*client.EventResponse, error)
	CloseEvent(ctx context.Context, eventID string) (*client.EventResponse, error)
	ListEvents(ctx context.Context) (*client.EventList, error)
	DriveQuota(ctx context.Context) (*client.QuotaResponse, error)
	Upload(ctx context.Context, guest string, paths []string) (*client.UploadResponse, error)
}

type App struct {
	config      *config.Config
	out         io.Writer
	maxFileSize int64
	newAPI      func(password string) API
}

func NewApp(c *config.Config, out io.Writer) (*App, error) {
	maxSize, err := sizex.Parse(c.MaxFileSize)
	if err != nil {
		return nil, fmt.Errorf("max file size %q: %w", c.MaxFileSize, err)
	}

	return &App{
		config:      c,
		out:         out,
		maxFileSize: maxSize,
		newAPI: func(password string) API {
			return client.New(c.ServerURL, password, c.Timeout)
		},
	}, nil
}

// Run executes one command. args start with the command name.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "create-event":
		return a.createEvent(ctx, rest)
	case "close-event":
		return a.closeEvent(ctx, rest)
	case "list-events":
		return a.listEvents(ctx)
	case "quota":
		return a.quota(ctx)
	case "upload":
		return a.upload(ctx, rest)
	case "help", "-h", "--help":
		fmt.Fprintln(a.out, ErrUsage.Error())
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%w", cmd, ErrUsage)
	}
}

// admin returns an API authenticated with the configured password, asking
// for one when it is empty.
func (a *App) admin() (API, error) {
	pw := a.config.AdminPassword
	if pw == "" {
		var err error
		if pw, err = GetPassword(a.out); err != nil {
			return nil, fmt.Errorf("read password: %w", err)
		}
	}
	return a.newAPI(pw), nil
}

func (a *App) createEvent(ctx context.Context, args []string) error {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		return errors.New("usage: eventctl create-event <name>")
	}

	api, err := a.admin()
	if err != nil {
		return err
	}
	res, err := api.CreateEvent(ctx, name)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s\n  id:     %s\n  name:   %s\n  folder: %s\n", res.Message, res.Event.ID, res.Event.Name, res.Event.DriveFolderID)
	a.printWarnings(res.Warnings)
	return nil
}

func (a *App) closeEvent(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: eventctl close-event <id>")
	}

	api, err := a.admin()
	if err != nil {
		return err
	}
	res, err := api.CloseEvent(ctx, args[0])
	if err != nil {
		return err
	}

	var uploads int64
	if res.Event.UploadsCount != nil {
		uploads = *res.Event.UploadsCount
	}
	fmt.Fprintf(a.out, "%s\n  id:      %s\n  name:    %s\n  uploads: %d\n", res.Message, res.Event.ID, res.Event.Name, uploads)
	a.printWarnings(res.Warnings)
	return nil
}

func (a *App) listEvents(ctx context.Context) error {
	api, err := a.admin()
	if err != nil {
		return err
	}
	list, err := api.ListEvents(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tACTIVE\tUPLOADS\tCREATED")
	for _, e := range list.Events {
		var uploads int64
		if e.UploadsCount != nil {
			uploads = *e.UploadsCount
		}
		created := ""
		if e.CreatedAt != nil {
			created = e.CreatedAt.Local().Format(time.DateTime)
		}
		active := ""
		if e.Active {
			active = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", e.ID, e.Name, active, uploads, created)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%d event(s), %d active\n", list.Total, list.ActiveEvents)
	return nil
}

func (a *App) quota(ctx context.Context) error {
	api, err := a.admin()
	if err != nil {
		return err
	}
	res, err := api.DriveQuota(ctx)
	if err != nil {
		return err
	}

	q := res.Quota
	fmt.Fprintf(a.out, "limit:     %s\n", q.Limit.Formatted)
	fmt.Fprintf(a.out, "usage:     %s (%.2f%%)\n", q.Usage.Total.Formatted, q.UsagePercentage)
	fmt.Fprintf(a.out, "  files:   %s\n", q.Usage.Drive.Formatted)
	fmt.Fprintf(a.out, "  trash:   %s\n", q.Usage.Trash.Formatted)
	fmt.Fprintf(a.out, "available: %s\n", q.Available.Formatted)
	return nil
}

func (a *App) upload(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("upload", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	guest := fs.String("g", "", "guest name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	files := fs.Args()
	if strings.TrimSpace(*guest) == "" || len(files) == 0 {
		return errors.New("usage: eventctl upload -g <guest> <files...>")
	}

	if err := client.CheckFileSizes(files, a.maxFileSize); err != nil {
		return err
	}

	res, err := a.newAPI("").Upload(ctx, *guest, files)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s (%s)\n", res.Message, res.Event)
	for _, f := range res.Files {
		fmt.Fprintf(a.out, "  %s  %s  %s\n", f.OriginalName, sizex.FormatBytes(f.Size), f.DriveLink)
	}
	a.printWarnings(res.Warnings)
	return nil
}

func (a *App) printWarnings(ws []client.Warning) {
	for _, w := range ws {
		line := "warning: " + w.Step
		if w.Subject != "" {
			line += " " + w.Subject
		}
		if w.Details != "" {
			line += ": " + w.Details
		}
		fmt.Fprintln(a.out, line)
	}
}
