package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"pets-gateway/internal/adapters/storage"
	"pets-gateway/internal/domain/pets"
	"pets-gateway/internal/notify"
	"pets-gateway/internal/platform/config"
	"pets-gateway/internal/platform/httpclient"
	"pets-gateway/internal/platform/logger"

	"github.com/spf13/cobra"
)

type globalOpts struct {
	server    string
	timeout   time.Duration
	driver    string
	dsn       string
	authority string
	format    string
	logLevel  string
}

// gateway es lo común entre el Service local y el Client remoto.
type gateway interface {
	Matcher() *pets.Matcher
	Type(uri string) (string, error)
	Fetch(ctx context.Context, uri string, q pets.Query) ([]pets.Row, error)
	Create(ctx context.Context, uri string, fs pets.FieldSet) (string, error)
	Modify(ctx context.Context, uri string, fs pets.FieldSet, filter pets.Filter) (int64, error)
	Remove(ctx context.Context, uri string, filter pets.Filter) (int64, error)
}

// local adapta el Service: Fetch drena el cursor.
type local struct {
	*pets.Service
}

func (l local) Fetch(ctx context.Context, uri string, q pets.Query) ([]pets.Row, error) {
	cur, err := l.Service.Fetch(ctx, uri, q)
	if err != nil {
		return nil, err
	}
	return pets.Collect(cur)
}

// app es lo que necesita cada subcomando: el gateway y dónde escribir.
type app struct {
	gw    gateway
	out   io.Writer
	close func() error
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &globalOpts{}

	root := &cobra.Command{
		Use:   "petctl",
		Short: "petctl consulta y modifica la tabla pets por identificador",
		Long: `petctl resuelve identificadores content://<authority>/pets[/<id>]
y ejecuta fetch, create, modify y remove contra el storage configurado.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	f := root.PersistentFlags()
	f.StringVar(&opts.server, "server", "", "URL de un gateway remoto (ignora --driver y --db)")
	f.DurationVar(&opts.timeout, "timeout", httpclient.DefaultTimeout, "timeout de requests con --server")
	f.StringVar(&opts.driver, "driver", config.DriverSQLite, "storage engine: sqlite, postgres o memory")
	f.StringVar(&opts.dsn, "db", "pets.db", "sqlite path o postgres DSN")
	f.StringVar(&opts.authority, "authority", pets.DefaultAuthority, "authority de los identificadores")
	f.StringVarP(&opts.format, "format", "o", formatText, "salida: text, json o yaml")
	f.StringVar(&opts.logLevel, "log-level", "warn", "nivel de log en stderr")

	open := func(cmd *cobra.Command) (*app, error) {
		return opts.open(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
	}

	root.AddCommand(
		newQueryCmd(open, opts),
		newInsertCmd(open, opts),
		newUpdateCmd(open, opts),
		newDeleteCmd(open, opts),
		newTypeCmd(open, opts),
	)
	return root
}

func (o *globalOpts) open(ctx context.Context, out, errOut io.Writer) (*app, error) {
	if _, err := parseFormat(o.format); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(o.logLevel),
		Format: logger.FormatText,
		App:    "petctl",
		Output: errOut,
	})

	matcher, err := pets.NewMatcher(o.authority, pets.DefaultRoutes(pets.DefaultPath)...)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(o.server) != "" {
		hc, err := httpclient.New(o.server, o.timeout)
		if err != nil {
			return nil, err
		}
		return &app{
			gw:    pets.NewClient(hc, matcher),
			out:   out,
			close: func() error { return nil },
		}, nil
	}

	engine, closeFn, err := storage.Open(ctx, o.driver, o.dsn)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	reg := notify.NewRegistry()
	reg.Register("", true, notify.ObserverFunc(func(uri string) {
		log.Info("changed", map[string]any{"uri": uri})
	}))

	return &app{
		gw:    local{pets.NewService(engine, matcher, reg, pets.WithLogger(log))},
		out:   out,
		close: closeFn,
	}, nil
}

// resolveArg: sin argumento usa la collection; un número solo se toma como id.
func (a *app) resolveArg(args []string) string {
	m := a.gw.Matcher()
	if len(args) == 0 || args[0] == "" {
		return m.CollectionURI()
	}
	if _, ok := parsePositive(args[0]); ok {
		return m.CollectionURI() + "/" + args[0]
	}
	return args[0]
}
