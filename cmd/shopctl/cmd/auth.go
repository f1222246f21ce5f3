package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	flagEmail    string
	flagPassword string
	flagName     string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and log in",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		sess, err := loadSession()
		if err != nil {
			return err
		}
		if err := sess.Register(ctx, flagEmail, flagPassword, flagName); err != nil {
			return err
		}
		if err := saveSession(sess); err != nil {
			return err
		}
		fmt.Println(successStyle.Render("Registered and logged in as ") + flagEmail)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session locally",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		sess, err := loadSession()
		if err != nil {
			return err
		}
		if err := sess.Login(ctx, flagEmail, flagPassword); err != nil {
			return err
		}
		if err := saveSession(sess); err != nil {
			return err
		}
		fmt.Println(successStyle.Render("Logged in as ") + flagEmail)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Revoke the session and delete the local state",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		sess, err := loadSession()
		if err != nil {
			return err
		}
		// local state goes regardless of whether the server call succeeds
		logoutErr := sess.Logout(ctx)
		if err := clearSession(); err != nil {
			return err
		}
		if logoutErr != nil {
			fmt.Println(mutedStyle.Render("Server logout failed, local session removed anyway"))
			return nil
		}
		fmt.Println(successStyle.Render("Logged out"))
		return nil
	},
}

var meCmd = &cobra.Command{
	Use:   "me",
	Short: "Show the logged-in user's profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		sess, err := loadSession()
		if err != nil {
			return err
		}
		user, err := sess.Me(ctx)
		if err != nil {
			return err
		}
		// Me may have rotated the tokens, persist the fresh state
		if err := saveSession(sess); err != nil {
			return err
		}
		fmt.Println(titleStyle.Render("Profile"))
		fmt.Printf("  Email: %s\n", user.Email)
		fmt.Printf("  Name:  %s\n", user.Name)
		fmt.Printf("  Role:  %s\n", user.Role)
		return nil
	},
}

func init() {
	registerCmd.Flags().StringVar(&flagEmail, "email", "", "account email")
	registerCmd.Flags().StringVar(&flagPassword, "password", "", "account password")
	registerCmd.Flags().StringVar(&flagName, "name", "", "display name")
	registerCmd.MarkFlagRequired("email")
	registerCmd.MarkFlagRequired("password")
	registerCmd.MarkFlagRequired("name")

	loginCmd.Flags().StringVar(&flagEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&flagPassword, "password", "", "account password")
	loginCmd.MarkFlagRequired("email")
	loginCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(registerCmd, loginCmd, logoutCmd, meCmd)
}
