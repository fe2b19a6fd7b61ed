package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/makemyfuture/planner/core/catalog"
)

func (cli *commandLine) runLoadCatalog(args []string) error {
	cmd := flag.NewFlagSet("loadcatalog", flag.ExitOnError)
	file := cmd.String("file", "", "Path to the catalog JSON document to validate.")
	if err := cmd.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		cmd.Usage()
		return errHelp
	}
	return cli.loadCatalog(*file)
}

// loadCatalog parses and validates a catalog document, then prints a
// per-division summary of what it holds.
func (cli *commandLine) loadCatalog(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cat, err := catalog.Load(f)
	if err != nil {
		color.New(color.FgRed).Fprintf(cli.out, "catalog is not loadable: %v\n", err)
		return err
	}

	table := tablewriter.NewWriter(cli.out)
	table.SetHeader([]string{"Division", "Name", "Courses", "Units"})
	for _, div := range cat.Divisions() {
		var count int
		var units float64
		it := cat.CoursesIn(div.Code)
		for c, ok := it.Next(); ok; c, ok = it.Next() {
			count++
			units += c.Units
		}
		table.Append([]string{
			div.Code,
			div.Name,
			strconv.Itoa(count),
			strconv.FormatFloat(units, 'f', -1, 64),
		})
	}
	table.SetFooter([]string{"", "Total", strconv.Itoa(cat.Len()), ""})
	table.Render()

	for _, area := range cat.Areas() {
		fmt.Fprintf(cli.out, "%s (%s): %d courses\n", area.Name, area.Code, len(area.Courses))
	}

	color.New(color.FgGreen).Fprintf(cli.out, "catalog OK: %d courses\n", cat.Len())
	return nil
}
