package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/redmonkez12/profile-api/cmd/profilectl/ui"
	"github.com/redmonkez12/profile-api/internal/auth"
	"github.com/redmonkez12/profile-api/internal/client"
	"github.com/redmonkez12/profile-api/internal/config"
	"github.com/redmonkez12/profile-api/internal/database"
	"github.com/redmonkez12/profile-api/internal/profile"
	"github.com/redmonkez12/profile-api/internal/storage"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "profilectl",
		Short:         "View and edit your profile from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("api", envOr("PROFILE_API_URL", "http://localhost:8080"), "Profile API base URL")
	rootCmd.PersistentFlags().String("token", os.Getenv("PROFILE_API_TOKEN"), "Access token")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print your profile",
		RunE:  runShow,
	}

	editCmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit your profile interactively",
		RunE:  runEdit,
	}
	editCmd.Flags().String("image", "", "Path to a new profile picture")

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Print your profile every time it changes",
		RunE:  runWatch,
	}

	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development access token from PASETO_KEY",
		RunE:  runToken,
	}
	tokenCmd.Flags().String("user", "", "User id (required)")
	tokenCmd.Flags().String("email", "", "Email claim")
	tokenCmd.Flags().Duration("ttl", 0, "Token lifetime (defaults to ACCESS_TOKEN_DURATION)")
	_ = tokenCmd.MarkFlagRequired("user")

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the users table if it does not exist",
		RunE:  runMigrate,
	}

	rootCmd.AddCommand(showCmd, editCmd, watchCmd, tokenCmd, migrateCmd)

	if err := rootCmd.Execute(); err != nil {
		ui.PrintError(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newClient(cmd *cobra.Command) *client.Client {
	api, _ := cmd.Flags().GetString("api")
	token, _ := cmd.Flags().GetString("token")
	return client.New(api, token, nil)
}

func runShow(cmd *cobra.Command, args []string) error {
	view, err := newClient(cmd).Profile(cmd.Context())
	if err != nil {
		return err
	}

	ui.PrintProfile(cmd.OutOrStdout(), view)
	return nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	imagePath, _ := cmd.Flags().GetString("image")
	c := newClient(cmd)

	view, err := c.Profile(cmd.Context())
	if err != nil {
		return err
	}
	if !view.Editable.Email && !view.Editable.Phone {
		fmt.Fprintln(cmd.OutOrStdout(), "Unknown signup method: contact details are read-only.")
	}

	update, err := ui.RunEditForm(view, imagePath)
	if err != nil {
		return fmt.Errorf("form cancelled: %w", err)
	}

	out := cmd.OutOrStdout()
	var progress storage.ProgressFunc
	if update.ImagePath != "" {
		progress = func(sent, total int64) {
			ui.PrintProgress(out, storage.Percent(sent, total))
		}
	}

	resp, err := c.Save(cmd.Context(), update, progress)
	if progress != nil {
		fmt.Fprintln(out)
	}
	if err != nil {
		return err
	}

	ui.PrintSuccess(out, resp.Message)
	if resp.Profile != nil {
		ui.PrintProfile(out, resp.Profile)
	}
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Watching profile, press Ctrl+C to stop.")

	return newClient(cmd).Watch(ctx, func(v *profile.View) {
		ui.PrintProfile(out, v)
	})
}

func runToken(cmd *cobra.Command, args []string) error {
	userID, _ := cmd.Flags().GetString("user")
	email, _ := cmd.Flags().GetString("email")
	ttl, _ := cmd.Flags().GetDuration("ttl")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if ttl <= 0 {
		ttl = cfg.Auth.AccessTokenDuration
	}

	tokens, err := auth.NewPasetoService(cfg.Auth.PasetoKey)
	if err != nil {
		return err
	}

	token, err := tokens.CreateToken(userID, email, ttl)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	db, err := database.Open(ctx, cfg.Database.ConnectionString())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.CreateSchema(ctx, db); err != nil {
		return err
	}

	ui.PrintSuccess(cmd.OutOrStdout(), "Schema is up to date")
	return nil
}
