package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"pets-gateway/internal/domain/pets"

	"github.com/spf13/cobra"
)

type opener func(cmd *cobra.Command) (*app, error)

type filterFlags struct {
	where string
	args  []string
}

func (f *filterFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.where, "where", "", "predicado con placeholders ?, p.ej. \"gender = ?\"")
	cmd.Flags().StringArrayVar(&f.args, "arg", nil, "argumento del predicado (repetible, en orden)")
}

func (f *filterFlags) filter() pets.Filter {
	if strings.TrimSpace(f.where) == "" {
		return pets.Filter{}
	}
	args := make([]any, 0, len(f.args))
	for _, a := range f.args {
		args = append(args, a)
	}
	return pets.Filter{Where: f.where, Args: args}
}

func newQueryCmd(open opener, g *globalOpts) *cobra.Command {
	var (
		projection []string
		sortBy     string
		filter     filterFlags
	)
	cmd := &cobra.Command{
		Use:     "query [uri|id]",
		Aliases: []string{"get", "ls"},
		Short:   "Lee filas de la collection o de un item",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			cols, err := pets.ResolveProjection(projection)
			if err != nil {
				return err
			}
			rows, err := a.gw.Fetch(cmd.Context(), a.resolveArg(args), pets.Query{
				Projection: projection,
				Filter:     filter.filter(),
				Sort:       sortBy,
			})
			if err != nil {
				return err
			}
			return writeRows(a.out, g.format, cols, rows)
		},
	}
	cmd.Flags().StringSliceVar(&projection, "projection", nil, "columnas a devolver")
	cmd.Flags().StringVar(&sortBy, "sort", "", "orden, p.ej. \"name ASC\"")
	filter.bind(cmd)
	return cmd
}

func newInsertCmd(open opener, g *globalOpts) *cobra.Command {
	var sets []string
	cmd := &cobra.Command{
		Use:   "insert [uri]",
		Short: "Inserta una mascota: --set name=Tom --set gender=male",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := parseSets(sets)
			if err != nil {
				return err
			}
			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			item, err := a.gw.Create(cmd.Context(), a.resolveArg(args), fs)
			if err != nil {
				return err
			}
			if item == "" {
				return errors.New("insert failed")
			}
			return writeValue(a.out, g.format, map[string]any{"uri": item})
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "columna=valor (repetible); valor null limpia")
	return cmd
}

func newUpdateCmd(open opener, g *globalOpts) *cobra.Command {
	var (
		sets   []string
		filter filterFlags
	)
	cmd := &cobra.Command{
		Use:   "update [uri|id]",
		Short: "Actualiza las columnas indicadas con --set",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := parseSets(sets)
			if err != nil {
				return err
			}
			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			n, err := a.gw.Modify(cmd.Context(), a.resolveArg(args), fs, filter.filter())
			if err != nil {
				return err
			}
			return writeValue(a.out, g.format, map[string]any{"rows_affected": n})
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "columna=valor (repetible); valor null limpia")
	filter.bind(cmd)
	return cmd
}

func newDeleteCmd(open opener, g *globalOpts) *cobra.Command {
	var filter filterFlags
	cmd := &cobra.Command{
		Use:     "delete [uri|id]",
		Aliases: []string{"rm"},
		Short:   "Borra un item o las filas que cumplen --where",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			n, err := a.gw.Remove(cmd.Context(), a.resolveArg(args), filter.filter())
			if err != nil {
				return err
			}
			return writeValue(a.out, g.format, map[string]any{"rows_affected": n})
		},
	}
	filter.bind(cmd)
	return cmd
}

func newTypeCmd(open opener, g *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "type [uri|id]",
		Short: "Imprime el MIME type del identificador",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			typ, err := a.gw.Type(a.resolveArg(args))
			if err != nil {
				return err
			}
			return writeValue(a.out, g.format, map[string]any{"type": typ})
		},
	}
}

// parseSets convierte columna=valor a un FieldSet. gender acepta nombre o
// número y weight se pasa a entero si se puede; el resto lo decide Validate.
func parseSets(sets []string) (pets.FieldSet, error) {
	fs := make(pets.FieldSet, len(sets))
	for _, s := range sets {
		k, v, ok := strings.Cut(s, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --set %q: want column=value", s)
		}
		if v == "null" {
			fs[k] = nil
			continue
		}
		switch k {
		case pets.ColumnGender:
			if g, ok := pets.ParseGender(v); ok {
				fs[k] = g
				continue
			}
			fs[k] = intOrString(v)
		case pets.ColumnWeight, pets.ColumnID:
			fs[k] = intOrString(v)
		default:
			fs[k] = v
		}
	}
	return fs, nil
}

func intOrString(v string) any {
	if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
		return n
	}
	return v
}

func parsePositive(s string) (int64, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil && n > 0
}
