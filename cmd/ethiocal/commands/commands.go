// Package commands holds the subcommands of the ethiocal CLI.
package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/ethiocal/internal/calendar"
)

// NewRootCommand builds the ethiocal command tree. clock answers "today".
func NewRootCommand(clock calendar.Clock) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ethiocal",
		Short:         "Ethiopian calendar tools",
		Long:          `ethiocal converts dates between the Ethiopian and Gregorian calendars, formats and parses them, and lists the feasts of a year.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(NewTodayCommand(clock))
	rootCmd.AddCommand(NewConvertCommand())
	rootCmd.AddCommand(NewFormatCommand())
	rootCmd.AddCommand(NewParseCommand())
	rootCmd.AddCommand(NewAddCommand())
	rootCmd.AddCommand(NewFeastsCommand())

	return rootCmd
}

// NewTodayCommand creates the today command
func NewTodayCommand(clock calendar.Clock) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "today",
		Short: "Print today's date in both calendars",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			style, err := styleFlag(cmd)
			if err != nil {
				return err
			}

			g := calendar.CurrentGregorianDate(clock)
			e, err := calendar.GregorianToEthiopian(g)
			if err != nil {
				return err
			}

			ethiopian, err := calendar.FormatEthiopianDateWithWeekday(e, style)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ethiopian)
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", g.ISO(), g.Weekday())
			return nil
		},
	}
	addStyleFlag(cmd, "long")
	return cmd
}

// NewConvertCommand creates the convert command with subcommands
func NewConvertCommand() *cobra.Command {
	convertCmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a date between calendars",
		Long:  "Convert a Gregorian YYYY-MM-DD date to Ethiopian, or an Ethiopian date to Gregorian",
	}

	toEthiopian := &cobra.Command{
		Use:     "to-ethiopian YYYY-MM-DD",
		Short:   "Convert a Gregorian date to Ethiopian",
		Example: "  ethiocal convert to-ethiopian 2024-09-11",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			style, err := styleFlag(cmd)
			if err != nil {
				return err
			}
			g, err := calendar.ParseISODate(args[0])
			if err != nil {
				return err
			}
			e, err := calendar.GregorianToEthiopian(g)
			if err != nil {
				return err
			}
			s, err := calendar.FormatEthiopianDate(e, style)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		},
	}
	addStyleFlag(toEthiopian, "long")
	convertCmd.AddCommand(toEthiopian)

	toGregorian := &cobra.Command{
		Use:     "to-gregorian DATE",
		Short:   "Convert an Ethiopian date to Gregorian",
		Example: "  ethiocal convert to-gregorian 1/1/2017\n  ethiocal convert to-gregorian 17 Meskerem 2017",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := parseEthiopianArgs(args)
			if err != nil {
				return err
			}
			g, err := calendar.EthiopianToGregorian(e)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), g.ISO())
			return nil
		},
	}
	convertCmd.AddCommand(toGregorian)

	return convertCmd
}

// NewFormatCommand creates the format command
func NewFormatCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "format DATE",
		Short: "Render a date in either calendar",
		Long: `Read DATE in the --from calendar (ISO YYYY-MM-DD for gregorian,
D/M/YYYY or "D Month YYYY" for ethiopian) and print it in --calendar.`,
		Example: "  ethiocal format 2024-09-11 --calendar ethiopian --style amharic",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := calendarFlag(cmd, "from")
			if err != nil {
				return err
			}
			to, err := calendarFlag(cmd, "calendar")
			if err != nil {
				return err
			}
			style, err := styleFlag(cmd)
			if err != nil {
				return err
			}

			d, err := calendar.ParseDateByCalendar(strings.Join(args, " "), from)
			if err != nil {
				return err
			}
			s, err := calendar.FormatDateByCalendar(d, to, style)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		},
	}
	cmd.Flags().String("from", "gregorian", "Calendar DATE is written in (gregorian, ethiopian)")
	cmd.Flags().String("calendar", "ethiopian", "Calendar to print in (gregorian, ethiopian)")
	addStyleFlag(cmd, "long")
	return cmd
}

// NewParseCommand creates the parse command
func NewParseCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "parse TEXT",
		Short:   "Recognize an Ethiopian date in text",
		Example: "  ethiocal parse 17/1/2017\n  ethiocal parse 29 ታኅሣሥ 2017",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := parseEthiopianArgs(args)
			if err != nil {
				return err
			}
			g, err := calendar.EthiopianToGregorian(e)
			if err != nil {
				return err
			}
			long, _ := calendar.FormatEthiopianDate(e, calendar.StyleLong)
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", e, long, g.ISO())
			return nil
		},
	}
}

// NewAddCommand creates the add command
func NewAddCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "add DATE --days N",
		Short:   "Add days to an Ethiopian date",
		Example: "  ethiocal add 5/13/2016 --days 1\n  ethiocal add 1/1/2017 --days=-1",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			days, _ := cmd.Flags().GetInt("days")
			style, err := styleFlag(cmd)
			if err != nil {
				return err
			}

			e, err := parseEthiopianArgs(args)
			if err != nil {
				return err
			}
			sum, err := calendar.AddDaysToEthiopian(e, days)
			if err != nil {
				return err
			}
			s, err := calendar.FormatEthiopianDate(sum, style)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		},
	}
	cmd.Flags().Int("days", 0, "Days to add, negative to go back")
	cmd.MarkFlagRequired("days")
	addStyleFlag(cmd, "short")
	return cmd
}

// NewFeastsCommand creates the feasts command
func NewFeastsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "feasts YEAR",
		Short:   "List the feasts of an Ethiopian year",
		Example: "  ethiocal feasts 2017",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid year %q", args[0])
			}
			amharic, _ := cmd.Flags().GetBool("amharic")
			style := calendar.StyleLong
			if amharic {
				style = calendar.StyleAmharic
			}

			feasts, err := calendar.FeastsOf(year)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			ev := calendar.EvangelistOf(year)
			fmt.Fprintf(out, "Year %d, evangelist %s (%s)\n", year, ev, ev.Amharic())
			for _, f := range feasts {
				name := f.Name
				if amharic {
					name = f.NameAmharic
				}
				date, err := calendar.FormatEthiopianDate(f.Date, style)
				if err != nil {
					return err
				}
				g, err := calendar.EthiopianToGregorian(f.Date)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%-14s %-18s %s\n", name, date, g.ISO())
			}
			return nil
		},
	}
	cmd.Flags().Bool("amharic", false, "Print names in Ge'ez script")
	return cmd
}

// -----------------------------------------------------------------------------
// Flag helpers
// -----------------------------------------------------------------------------

func addStyleFlag(cmd *cobra.Command, def string) {
	cmd.Flags().String("style", def, "Output style (short, long, amharic)")
}

func styleFlag(cmd *cobra.Command) (calendar.Style, error) {
	s, _ := cmd.Flags().GetString("style")
	return calendar.ParseStyle(s)
}

func calendarFlag(cmd *cobra.Command, name string) (calendar.CalendarType, error) {
	s, _ := cmd.Flags().GetString(name)
	return calendar.ParseCalendarType(s)
}

// parseEthiopianArgs joins args so "17 Meskerem 2017" works unquoted.
func parseEthiopianArgs(args []string) (calendar.EthiopianDate, error) {
	input := strings.Join(args, " ")
	e, ok := calendar.ParseEthiopianDate(input)
	if !ok {
		return calendar.EthiopianDate{}, fmt.Errorf("%q is not a date like 1/1/2017 or 1 Meskerem 2017", input)
	}
	if err := e.Validate(); err != nil {
		return calendar.EthiopianDate{}, err
	}
	return e, nil
}
