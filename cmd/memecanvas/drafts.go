package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
)

type draftsCmd struct {
	*root
	fs     *flag.FlagSet
	output string
}

func (c *draftsCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseDraftsCmd(args []string, r *root) (*draftsCmd, error) {
	fs := flag.NewFlagSet("drafts", flag.ContinueOnError)
	fs.SetOutput(r.stderr)
	c := &draftsCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.output, "output", "", "file for export (default <id>.png)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *draftsCmd) Run() error {
	args := c.fs.Args()
	if len(args) < 1 {
		return &UsageError{of: c}
	}
	// Allow flags after the operation, as in `drafts export ID -output x.png`.
	if err := c.fs.Parse(args[1:]); err != nil {
		return err
	}
	rest := c.fs.Args()
	switch args[0] {
	case "list":
		return c.runList()
	case "export":
		if len(rest) != 1 {
			return &UsageError{of: c}
		}
		return c.runExport(rest[0])
	case "delete":
		if len(rest) != 1 {
			return &UsageError{of: c}
		}
		return c.runDelete(rest[0])
	default:
		return fmt.Errorf("unknown drafts command: %s", args[0])
	}
}

func (c *draftsCmd) runList() error {
	store, err := c.drafts()
	if err != nil {
		return err
	}
	list, err := store.List(context.Background())
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(c.stderr, "no drafts")
		return nil
	}
	tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tSIZE\tNAME")
	for _, d := range list {
		fmt.Fprintf(tw, "%s\t%s\t%dx%d\t%s\n", d.ID, d.CreatedAt.Local().Format("2006-01-02 15:04"), d.Width, d.Height, d.Name)
	}
	return tw.Flush()
}

func (c *draftsCmd) runExport(id string) error {
	store, err := c.drafts()
	if err != nil {
		return err
	}
	d, err := store.Get(context.Background(), id)
	if err != nil {
		return fmt.Errorf("draft %s: %w", id, err)
	}
	data, err := d.PNG()
	if err != nil {
		return err
	}
	out := c.output
	if out == "" {
		out = id + ".png"
	}
	if out == "-" {
		_, err = c.stdout.Write(data)
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Fprintf(c.stderr, "wrote %s\n", out)
	return nil
}

func (c *draftsCmd) runDelete(id string) error {
	store, err := c.drafts()
	if err != nil {
		return err
	}
	if err := store.Delete(context.Background(), id); err != nil {
		return fmt.Errorf("draft %s: %w", id, err)
	}
	return nil
}
