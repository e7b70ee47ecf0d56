package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/akinalp/forum/database"
	"github.com/akinalp/forum/repository"
)

func defaultDBPath() string {
	if p, ok := os.LookupEnv("DATABASE_PATH"); ok {
		return p
	}
	return "./data/forum.db"
}

func openDB(cmd *cobra.Command) (*database.DB, error) {
	path, _ := cmd.Flags().GetString("db")
	migrations, err := fs.Sub(database.EmbeddedMigrations, "migrations")
	if err != nil {
		return nil, err
	}
	return database.New(path, migrations)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "forumadmin",
		Short:         "Forum maintenance commands",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("db", defaultDBPath(), "SQLite database path")

	moderator := &cobra.Command{
		Use:   "moderator",
		Short: "Grant or revoke moderator rights",
	}
	moderator.AddCommand(
		newModeratorCmd("grant", true),
		newModeratorCmd("revoke", false),
	)

	root.AddCommand(moderator, newStatsCmd())
	return root
}

func newModeratorCmd(use string, grant bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <username>",
		Short: use + " moderator rights",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := context.Background()
			users := repository.NewSQLiteUserRepo(db.Conn)
			user, err := users.GetByUsername(ctx, args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if err := users.SetModerator(ctx, user.ID, grant); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: moderator=%t\n", user.Username, grant)
			return nil
		},
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print member and message totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := context.Background()
			members, err := repository.NewSQLiteUserRepo(db.Conn).Count(ctx)
			if err != nil {
				return err
			}
			messages, err := repository.NewSQLiteForumRepo(db.Conn).Count(ctx, repository.ForumCriteria{})
			if err != nil {
				return err
			}
			topics, err := repository.NewSQLiteForumRepo(db.Conn).Count(ctx, repository.ForumCriteria{OnlyTopics: true})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "members:  %d\n", members)
			fmt.Fprintf(out, "topics:   %d\n", topics)
			fmt.Fprintf(out, "messages: %d\n", messages)
			return nil
		},
	}
}
