package main

import (
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/meigma/apk"
	"github.com/meigma/apk/internal/progress"
)

func newListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List entry names in archive order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, name := range a.Names() {
				fmt.Fprintln(out, name)
			}
			return nil
		},
	}
}

func newInfoCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show archive identity and dex layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open()
			if err != nil {
				return err
			}
			dex := slices.Collect(a.DexNames())

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "Name:\t%s\n", a.Name())
			fmt.Fprintf(w, "Digest:\t%s\n", a.Digest())
			fmt.Fprintf(w, "Entries:\t%d\n", a.Len())
			fmt.Fprintf(w, "Dex:\t%s\n", strings.Join(dex, ", "))
			fmt.Fprintf(w, "Multidex:\t%t\n", a.IsMultiDex())
			return w.Flush()
		},
	}
}

func newChecksumsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "checksums",
		Short: "Verify and print the CRC-32 of every entry",
		Long: `checksums decompresses every entry, computes its CRC-32 and compares it with
the value declared in the archive. Mismatches are logged as warnings; the
computed value is printed. Entries that cannot be decoded are reported and
make the command exit non-zero.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var bar *progress.Bar
			a, err := c.open(apk.WithProgress(func(ev apk.ProgressEvent) {
				bar.Update(ev)
			}))
			if err != nil {
				return err
			}

			bar = progress.New(cmd.ErrOrStderr(), a.Len(), c.cfg.Progress)
			sums, verifyErr := a.Checksums()
			bar.Finish()

			out := cmd.OutOrStdout()
			for _, name := range a.Names() {
				if sum, ok := sums[name]; ok {
					fmt.Fprintf(out, "%08x  %s\n", sum, name)
				}
			}
			if verifyErr != nil {
				return fmt.Errorf("%d of %d entries could not be verified: %w", a.Len()-len(sums), a.Len(), verifyErr)
			}
			return nil
		},
	}
}

func newReportCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print each entry with its label and checksum",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tLABEL\tCRC32")
			for row := range a.Report() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", row.Name, row.Label, row.ChecksumString())
				if row.Err != nil {
					c.logger.Warn("checksum unavailable", "entry", row.Name, "error", row.Err)
				}
			}
			return w.Flush()
		},
	}
}

func newCatCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "cat <name>",
		Short: "Write the decompressed content of an entry to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open()
			if err != nil {
				return err
			}
			data, err := a.Read(args[0])
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
