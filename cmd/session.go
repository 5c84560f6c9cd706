package cmd

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"
)

func loginHint(err error) {
	log.Warn().Err(err).Msg("session expired, run `hr-portal login` to sign in again")
}

func Login(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return errors.New("username and password are required")
	}

	a, err := bootstrap(loginHint)
	if err != nil {
		return err
	}
	defer a.Close()

	user, err := a.client.Login(ctx, username, password)
	if err != nil {
		return err
	}
	fmt.Printf("Logged in as %s (%s)\n", user.FullName(), user.Username)
	return nil
}

func Logout() error {
	a, err := bootstrap(loginHint)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.svc.Logout()
}

func WhoAmI() error {
	a, err := bootstrap(loginHint)
	if err != nil {
		return err
	}
	defer a.Close()

	user, err := a.client.CurrentUser()
	if err != nil {
		return err
	}
	if user == nil {
		fmt.Println("Not logged in")
		return nil
	}

	sess, err := a.store.Session()
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s), role: %s\n", user.FullName(), user.Username, user.Role)
	if sess != nil && sess.ExpiresAt != nil {
		fmt.Printf("Access token expires at %s\n", sess.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
	}
	return nil
}
