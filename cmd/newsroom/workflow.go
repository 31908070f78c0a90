package main

import (
	"fmt"
	"strconv"

	"github.com/goliatone/go-newsroom"
	"github.com/goliatone/go-newsroom/internal/commands/auditcmd"
	"github.com/goliatone/go-newsroom/internal/commands/workflowcmd"
	"github.com/spf13/cobra"
)

func articleCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "article",
		Short: "Manage articles",
	}

	var title, slug string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an article in Draft",
		RunE: func(cmd *cobra.Command, _ []string) error {
			actor := opts.actor()
			if actor == nil {
				return fmt.Errorf("--actor-id or --actor-role is required")
			}
			module, err := moduleBuilder(opts)
			if err != nil {
				return err
			}
			defer module.Close()

			record, err := module.Articles().Create(cmd.Context(), newsroom.CreateArticleRequest{
				Title:     title,
				Slug:      slug,
				CreatedBy: *actor,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), record)
		},
	}
	create.Flags().StringVar(&title, "title", "", "Article title")
	create.Flags().StringVar(&slug, "slug", "", "Article slug (derived from the title when empty)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List articles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			module, err := moduleBuilder(opts)
			if err != nil {
				return err
			}
			defer module.Close()

			records, err := module.Articles().List(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), records)
		},
	}

	cmd.AddCommand(create, list)
	return cmd
}

func stateCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "state <article-id>",
		Short: "Print the workflow state of an article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseArticleID(args[0])
			if err != nil {
				return err
			}
			module, err := moduleBuilder(opts)
			if err != nil {
				return err
			}
			defer module.Close()

			state, err := module.GetState(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), state)
		},
	}
}

func transitionCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "transition <article-id> <action>",
		Short: "Request a workflow transition",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseArticleID(args[0])
			if err != nil {
				return err
			}
			module, err := moduleBuilder(opts)
			if err != nil {
				return err
			}
			defer module.Close()

			result, err := module.Container().TransitionHandler().Transition(cmd.Context(), workflowcmd.RequestTransitionCommand{
				ArticleID: id,
				Action:    args[1],
				ActorID:   opts.actorID,
				ActorRole: opts.actorRole,
				ActorName: opts.actorName,
			})
			if result != nil {
				if printErr := printJSON(cmd.OutOrStdout(), result); printErr != nil {
					return printErr
				}
			}
			return err
		},
	}
}

func lockCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lock <article-id> <true|false>",
		Short: "Lock or unlock an article's workflow",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseArticleID(args[0])
			if err != nil {
				return err
			}
			locked, err := strconv.ParseBool(args[1])
			if err != nil {
				return fmt.Errorf("invalid lock value %q: %w", args[1], err)
			}
			module, err := moduleBuilder(opts)
			if err != nil {
				return err
			}
			defer module.Close()

			state, err := module.Container().LockHandler().SetLocked(cmd.Context(), workflowcmd.SetLockCommand{
				ArticleID: id,
				Locked:    locked,
				ActorID:   opts.actorID,
				ActorRole: opts.actorRole,
				ActorName: opts.actorName,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), state)
		},
	}
}

func eventsCmd(opts *globalOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "events <article-id>",
		Short: "Export an article's audit events, newest first, as JSON lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseArticleID(args[0])
			if err != nil {
				return err
			}
			module, err := moduleBuilder(opts)
			if err != nil {
				return err
			}
			defer module.Close()

			msg := auditcmd.ExportAuditCommand{ArticleID: id}
			if limit > 0 {
				msg.MaxRecords = &limit
			}
			return module.Container().ExportHandler(cmd.OutOrStdout()).Execute(cmd.Context(), msg)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of events (0 uses the configured default)")
	return cmd
}

func actionsCmd(opts *globalOptions) *cobra.Command {
	var view string
	cmd := &cobra.Command{
		Use:   "actions <article-id>",
		Short: "List the actions the actor may apply now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseArticleID(args[0])
			if err != nil {
				return err
			}
			module, err := moduleBuilder(opts)
			if err != nil {
				return err
			}
			defer module.Close()

			rules, err := module.AvailableActions(cmd.Context(), id, opts.actor(), view)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rules)
		},
	}
	cmd.Flags().StringVar(&view, "view", "full", "Rule view: full or simple")
	return cmd
}

func reconcileCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Report articles whose stage has no matching audit event",
		RunE: func(cmd *cobra.Command, _ []string) error {
			module, err := moduleBuilder(opts)
			if err != nil {
				return err
			}
			defer module.Close()

			report, err := module.Container().ReconcileHandler().Reconcile(cmd.Context(), auditcmd.ReconcileCommand{})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), report)
		},
	}
}
