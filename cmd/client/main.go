package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/urfave/cli/v2"
	"gitlab.com/dirk.krummacker/persons/internal/config"
	"gitlab.com/dirk.krummacker/persons/internal/console"
	"gitlab.com/dirk.krummacker/persons/internal/views"
	"gitlab.com/dirk.krummacker/persons/pkg/client"
	"gitlab.com/dirk.krummacker/persons/pkg/validation"
)

var version = "dev"

// fieldFlags map the form fields to the flags that set them.
var fieldFlags = map[string]string{
	validation.FieldFirstName:   "first-name",
	validation.FieldLastName:    "last-name",
	validation.FieldEmail:       "email",
	validation.FieldPhoneNumber: "phone",
	validation.FieldAge:         "age",
	validation.FieldDescription: "description",
}

// Usage example on the command line:
// > PERSONS_API_URL=http://localhost:8080 go run main.go create --first-name Ada --last-name Lovelace --email ada@x.org
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Name:    "persons",
		Usage:   "Manage the persons of the persons service",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api-url",
				Usage:   "URL of the persons service",
				Value:   config.LoadClient().APIURL,
				EnvVars: []string{"PERSONS_API_URL"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Level of the diagnostic trace on stderr: debug, info, warn or error",
				Value: "warn",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List all persons",
				Action: listAction,
			},
			{
				Name:      "show",
				Usage:     "Show the details of a person",
				ArgsUsage: "<id>",
				Action:    showAction,
			},
			{
				Name:   "create",
				Usage:  "Create a person",
				Flags:  fieldFlagSet(),
				Action: createAction,
			},
			{
				Name:      "edit",
				Usage:     "Change the fields given as flags, keep the others",
				ArgsUsage: "<id>",
				Flags:     fieldFlagSet(),
				Action:    editAction,
			},
			{
				Name:      "delete",
				Usage:     "Delete a person",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "Do not ask for confirmation",
					},
				},
				Action: deleteAction,
			},
			{
				Name:  "version",
				Usage: "Print build version & exit",
				Action: func(c *cli.Context) error {
					fmt.Fprintln(c.App.Writer, version)
					return nil
				},
			},
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "persons:", err)
		os.Exit(1)
	}
}

func fieldFlagSet() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "first-name", Usage: "First name"},
		&cli.StringFlag{Name: "last-name", Usage: "Last name"},
		&cli.StringFlag{Name: "email", Usage: "Email address"},
		&cli.StringFlag{Name: "phone", Usage: "Phone number"},
		&cli.StringFlag{Name: "age", Usage: "Age in years"},
		&cli.StringFlag{Name: "description", Usage: "Description of at most 500 characters"},
	}
}

// newConsole wires the client, the logger and the console from the global flags.
func newConsole(c *cli.Context, assumeYes bool) (*console.Console, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.String("log-level"))); err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	persons := client.New(c.String("api-url"))
	logger.Debug("using persons service", "url", c.String("api-url"))
	return console.New(c.Context, persons,
		console.WithOutput(c.App.Writer),
		console.WithAssumeYes(assumeYes),
		console.WithLogger(logger),
	), nil
}

func parseId(c *cli.Context) (int64, error) {
	if c.NArg() != 1 {
		return 0, fmt.Errorf("%s expects exactly one id", c.Command.Name)
	}
	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", c.Args().First())
	}
	return id, nil
}

func listAction(c *cli.Context) error {
	con, err := newConsole(c, false)
	if err != nil {
		return err
	}
	defer con.Close()
	return con.Open(views.ListRoute)
}

func showAction(c *cli.Context) error {
	id, err := parseId(c)
	if err != nil {
		return err
	}
	con, err := newConsole(c, false)
	if err != nil {
		return err
	}
	defer con.Close()
	return con.Open(views.ViewRoute(id))
}

func createAction(c *cli.Context) error {
	con, err := newConsole(c, false)
	if err != nil {
		return err
	}
	defer con.Close()
	if err := con.Open(views.CreateRoute); err != nil {
		return err
	}
	return submit(c, con)
}

func editAction(c *cli.Context) error {
	id, err := parseId(c)
	if err != nil {
		return err
	}
	con, err := newConsole(c, false)
	if err != nil {
		return err
	}
	defer con.Close()
	if err := con.Open(views.EditRoute(id)); err != nil {
		return err
	}
	return submit(c, con)
}

// submit copies the field flags that were given into the form and submits it. Violations are
// shown next to the fields.
func submit(c *cli.Context, con *console.Console) error {
	form, ok := con.Form()
	if !ok {
		return errors.New("form is not shown")
	}
	for _, field := range validation.FormFields {
		if name := fieldFlags[field]; c.IsSet(name) {
			if err := form.SetField(field, c.String(name)); err != nil {
				return err
			}
		}
	}
	err := form.Submit()
	var validationErr *validation.ValidationError
	if errors.As(err, &validationErr) {
		con.RenderForm(form.Snapshot())
	}
	return err
}

func deleteAction(c *cli.Context) error {
	id, err := parseId(c)
	if err != nil {
		return err
	}
	con, err := newConsole(c, c.Bool("yes"))
	if err != nil {
		return err
	}
	defer con.Close()
	if err := con.Open(views.ViewRoute(id)); err != nil {
		return err
	}
	details, ok := con.Details()
	if !ok {
		return errors.New("person is not shown")
	}
	return details.Delete()
}
