package main

import (
	"fmt"

	"github.com/fwojciec/saletrack"
)

// Run executes the ping command.
func (c *PingCmd) Run(deps *Dependencies) error {
	if err := deps.Resolver.Ping(deps.Ctx); err != nil {
		fmt.Fprintf(deps.Stderr, "challenge resolver unreachable: %s\n", saletrack.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, "challenge resolver is ready")
	return nil
}
