// staff-token prints a signed staff access token for the feedback API.
//
//	staff-token --secret "$STAFF_JWT_SECRET" --subject alice --ttl 8h
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/NomadCrew/feedback-desk/internal/auth"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var secret, subject string
	var ttl time.Duration

	flagSet := pflag.NewFlagSet("staff-token", pflag.ContinueOnError)
	flagSet.StringVar(&secret, "secret", os.Getenv("STAFF_JWT_SECRET"), "signing secret (default $STAFF_JWT_SECRET)")
	flagSet.StringVar(&subject, "subject", "", "staff user id placed in the token subject")
	flagSet.DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if ttl <= 0 {
		return fmt.Errorf("--ttl must be positive")
	}

	token, err := auth.GenerateStaffToken(secret, subject, ttl)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
