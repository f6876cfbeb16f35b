package main

import (
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/example/memecanvas/assets"
)

type templatesCmd struct {
	*root
	fs    *flag.FlagSet
	quick bool
	fonts bool
}

func (c *templatesCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseTemplatesCmd(args []string, r *root) (*templatesCmd, error) {
	fs := flag.NewFlagSet("templates", flag.ContinueOnError)
	fs.SetOutput(r.stderr)
	c := &templatesCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.BoolVar(&c.quick, "quick", false, "list the quick texts instead")
	fs.BoolVar(&c.fonts, "fonts", false, "list the font families instead")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *templatesCmd) Run() error {
	switch {
	case c.quick:
		for i, text := range assets.QuickTexts() {
			fmt.Fprintf(c.stdout, "%d\t%s\n", i+1, text)
		}
		return nil
	case c.fonts:
		for _, family := range assets.FontFamilies() {
			fmt.Fprintln(c.stdout, family)
		}
		return nil
	}
	query := strings.Join(c.fs.Args(), " ")
	found := assets.Search(query)
	if len(found) == 0 {
		return fmt.Errorf("no templates match %q", query)
	}
	tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tSIZE\tURL")
	for _, t := range found {
		fmt.Fprintf(tw, "%s\t%s\t%dx%d\t%s\n", t.ID, t.Title, t.Width, t.Height, t.URL)
	}
	return tw.Flush()
}
