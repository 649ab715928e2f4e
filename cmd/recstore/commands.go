package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cqkv/recstore/model"
	"github.com/cqkv/recstore/query"
	"github.com/cqkv/recstore/snapshot"
)

// newRootCmd returns the command tree and a func closing the store it opened
func newRootCmd() (*cobra.Command, func()) {
	var (
		configPath string
		a          *app
	)

	root := &cobra.Command{
		Use:           "recstore",
		Short:         "Manage person records",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			a, err = newApp(configPath, cmd.OutOrStdout())
			return err
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "configuration file")

	getApp := func() *app { return a }
	root.AddCommand(
		newCreateCmd(getApp),
		newInsertCmd(getApp),
		newEditCmd(getApp),
		newRemoveCmd(getApp),
		newDeleteCmd(getApp),
		newUpdateCmd(getApp),
		newSelectCmd(getApp),
		newFindCmd(getApp),
		newStatCmd(getApp),
		newPurgeCmd(getApp),
		newExportCmd(getApp),
		newImportCmd(getApp),
	)
	return root, func() {
		if a != nil {
			a.close()
		}
	}
}

type fieldFlags struct {
	first, last, dob, salary, gender string
	age                              int16
}

func (f *fieldFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.first, "first", "", "first name")
	cmd.Flags().StringVar(&f.last, "last", "", "last name")
	cmd.Flags().StringVar(&f.dob, "dob", "", "date of birth, yyyy-MM-dd")
	cmd.Flags().Int16Var(&f.age, "age", 0, "age")
	cmd.Flags().StringVar(&f.salary, "salary", "0", "salary")
	cmd.Flags().StringVar(&f.gender, "gender", "", "gender, one character")
}

func (f *fieldFlags) fields() (model.Fields, error) {
	var fields model.Fields
	dob, err := model.ParseDate(f.dob)
	if err != nil {
		return fields, fmt.Errorf("--dob: %w", err)
	}
	salary, err := decimal.NewFromString(f.salary)
	if err != nil {
		return fields, fmt.Errorf("--salary: %w", err)
	}
	gender, err := model.ParseGender(f.gender)
	if err != nil {
		return fields, fmt.Errorf("--gender: %w", err)
	}
	fields.FirstName = f.first
	fields.LastName = f.last
	fields.DateOfBirth = dob
	fields.Age = f.age
	fields.Salary = salary
	fields.Gender = gender
	return fields, nil
}

// parsePairs reads field=value arguments
func parsePairs(args []string) (map[string]string, error) {
	pairs := make(map[string]string, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("expected field=value, got %q", arg)
		}
		pairs[model.NormalizeField(name)] = strings.Trim(strings.TrimSpace(value), `'"`)
	}
	return pairs, nil
}

func parseID(arg string) (int32, error) {
	id, err := strconv.ParseInt(arg, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("bad id %q: %w", arg, err)
	}
	return int32(id), nil
}

func newCreateCmd(getApp func() *app) *cobra.Command {
	var ff fieldFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a record with the next free id",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fields, err := ff.fields()
			if err != nil {
				return err
			}
			a := getApp()
			id, err := a.store.Create(fields)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Record #%d is created.\n", id)
			return nil
		},
	}
	ff.register(cmd)
	return cmd
}

func newInsertCmd(getApp func() *app) *cobra.Command {
	var ff fieldFlags
	cmd := &cobra.Command{
		Use:   "insert ID",
		Short: "Insert a record under the given id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			fields, err := ff.fields()
			if err != nil {
				return err
			}
			a := getApp()
			if _, err = a.store.Insert(id, fields); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Record #%d is inserted.\n", id)
			return nil
		},
	}
	ff.register(cmd)
	return cmd
}

func newEditCmd(getApp func() *app) *cobra.Command {
	var ff fieldFlags
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Replace the fields of a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			fields, err := ff.fields()
			if err != nil {
				return err
			}
			a := getApp()
			if err = a.store.Edit(id, fields); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Record #%d is updated.\n", id)
			return nil
		},
	}
	ff.register(cmd)
	return cmd
}

func newRemoveCmd(getApp func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove ID",
		Short: "Remove a record by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a := getApp()
			ok, err := a.store.Remove(id)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintf(a.out, "Record #%d doesn't exist.\n", id)
				return nil
			}
			fmt.Fprintf(a.out, "Record #%d is removed.\n", id)
			return nil
		},
	}
}

func newDeleteCmd(getApp func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete FIELD=VALUE",
		Short: "Delete every record whose field equals value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs, err := parsePairs(args)
			if err != nil {
				return err
			}
			a := getApp()
			for field, value := range pairs {
				removed, err := a.store.DeleteWhere(field, value)
				if err != nil {
					return err
				}
				if len(removed) == 0 {
					fmt.Fprintln(a.out, "No records are deleted.")
					return nil
				}
				parts := make([]string, len(removed))
				for i, id := range removed {
					parts[i] = "#" + strconv.Itoa(int(id))
				}
				fmt.Fprintf(a.out, "Records %s are deleted.\n", strings.Join(parts, ", "))
			}
			return nil
		},
	}
}

func newUpdateCmd(getApp func() *app) *cobra.Command {
	var where []string
	cmd := &cobra.Command{
		Use:   "update FIELD=VALUE... --where FIELD=VALUE...",
		Short: "Set fields on every record matching all conditions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := parsePairs(args)
			if err != nil {
				return err
			}
			conditions, err := parsePairs(where)
			if err != nil {
				return err
			}
			a := getApp()
			n, err := a.store.UpdateWhere(query.Assignments(set), query.Conditions(conditions))
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%d record(s) updated.\n", n)
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&where, "where", "w", nil, "conditions joined with and")
	return cmd
}

func newSelectCmd(getApp func() *app) *cobra.Command {
	var fields []string
	cmd := &cobra.Command{
		Use:   "select [FIELD=VALUE...]",
		Short: "Print records matching all conditions",
		RunE: func(cmd *cobra.Command, args []string) error {
			conditions, err := parsePairs(args)
			if err != nil {
				return err
			}
			a := getApp()
			records, err := a.store.Select(fields, query.Conditions(conditions))
			if err != nil {
				return err
			}
			return printRecords(a.out, fields, records)
		},
	}
	cmd.Flags().StringSliceVarP(&fields, "fields", "f", nil, "fields to print, all when empty")
	return cmd
}

func newFindCmd(getApp func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "find FIELD VALUE",
		Short: "Find records by first name, last name or date of birth",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := getApp()
			records, err := a.store.FindBy(args[0], args[1])
			if err != nil {
				return err
			}
			return printRecords(a.out, nil, records)
		},
	}
}

func newStatCmd(getApp func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stat",
		Short: "Print the number of stored records",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := getApp()
			n, err := a.store.Stat()
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%d record(s).\n", n)
			return nil
		},
	}
}

func newPurgeCmd(getApp func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Reclaim the space of removed records",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := getApp()
			before, err := a.store.Stat()
			if err != nil {
				return err
			}
			n, err := a.store.Purge()
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Data file processing is completed: %d of %d records were purged.\n", n, before)
			return nil
		},
	}
}

func newExportCmd(getApp func() *app) *cobra.Command {
	var format string
	return withFormat(&cobra.Command{
		Use:   "export FILE",
		Short: "Write all records to a csv, xml or msgpack file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, err := snapshot.ByFormat(format)
			if err != nil {
				return err
			}
			a := getApp()
			snap, err := a.store.Snapshot()
			if err != nil {
				return err
			}
			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			if err = codec.Encode(f, snap); err != nil {
				_ = f.Close()
				return err
			}
			if err = f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "All records are exported to file %s.\n", args[0])
			return nil
		},
	}, &format)
}

func newImportCmd(getApp func() *app) *cobra.Command {
	var format string
	return withFormat(&cobra.Command{
		Use:   "import FILE",
		Short: "Replace all records with the content of a csv, xml or msgpack file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, err := snapshot.ByFormat(format)
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			snap, err := codec.Decode(f)
			_ = f.Close()
			if err != nil {
				return err
			}
			a := getApp()
			if err = a.store.Restore(snap); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%d records were imported from %s.\n", snap.Len(), args[0])
			return nil
		},
	}, &format)
}

func withFormat(cmd *cobra.Command, format *string) *cobra.Command {
	cmd.Flags().StringVar(format, "format", snapshot.FormatCSV, "csv, xml or msgpack")
	return cmd
}

func printRecords(w io.Writer, fields []string, records []model.Record) error {
	if len(fields) == 0 {
		fields = model.FieldNames
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(fields, "\t")))
	for i := range records {
		cells := make([]string, len(fields))
		for j, field := range fields {
			cells[j], _ = records[i].Text(field)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}
