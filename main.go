package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rm-hull/hr-portal-admin/cmd"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var port int
	var debug bool
	var username string
	var password string

	rootCmd := &cobra.Command{
		Use:          "hr-portal",
		Short:        "Admin dashboard backend for the HR portal",
		SilenceUsage: true,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard HTTP API server",
		RunE: func(_ *cobra.Command, _ []string) error {
			return cmd.ApiServer(port, debug)
		},
	}
	serveCmd.Flags().IntVar(&port, "port", 8080, "Port to run HTTP server on")
	serveCmd.Flags().BoolVar(&debug, "debug", false, "Enable debugging (pprof) - WARNING: do not enable in production")

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Copy appeals from the portal into the local snapshot",
		RunE: func(c *cobra.Command, _ []string) error {
			return cmd.Sync(c.Context())
		},
	}

	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the HR portal and store the session",
		RunE: func(c *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv("HR_PORTAL_PASSWORD")
			}
			return cmd.Login(c.Context(), username, password)
		},
	}
	loginCmd.Flags().StringVar(&username, "username", "", "Portal username")
	loginCmd.Flags().StringVar(&password, "password", "", "Portal password (defaults to $HR_PORTAL_PASSWORD)")
	_ = loginCmd.MarkFlagRequired("username")

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(_ *cobra.Command, _ []string) error {
			return cmd.Logout()
		},
	}

	whoamiCmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		RunE: func(_ *cobra.Command, _ []string) error {
			return cmd.WhoAmI()
		},
	}

	rootCmd.AddCommand(serveCmd, syncCmd, loginCmd, logoutCmd, whoamiCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}
