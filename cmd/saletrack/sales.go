package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/saletrack"
)

// Run executes the sales command.
func (c *SalesCmd) Run(deps *Dependencies) error {
	date := time.Now().UTC()
	if c.Date != "" {
		var err error
		date, err = time.Parse("2006-01-02", c.Date)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: invalid date %q, expected YYYY-MM-DD\n", c.Date)
			return saletrack.Errorf(saletrack.EINVALID, "invalid date %q", c.Date)
		}
	}

	sales, err := deps.Snapshots.SalesOn(deps.Ctx, c.Platform, date)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", saletrack.ErrorMessage(err))
		return err
	}

	if len(sales) == 0 {
		fmt.Fprintf(deps.Stdout, "No sales detected for %s on %s.\n", c.Platform, date.Format("2006-01-02"))
		return nil
	}

	fmt.Fprintf(deps.Stdout, "Sales for %s on %s (%d total):\n\n", c.Platform, date.Format("2006-01-02"), len(sales))
	for _, sale := range sales {
		days := "unknown listing age"
		if sale.DaysListed != nil {
			days = fmt.Sprintf("listed %d days", *sale.DaysListed)
		}
		title := sale.Title
		if title == "" {
			title = sale.ListingID
		}
		fmt.Fprintf(deps.Stdout, "  %s  %.2f %s  (%s)\n     %s\n", title, sale.LastSeenPrice, sale.Currency, days, sale.URL)
	}

	return nil
}
