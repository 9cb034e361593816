package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mediajournal/mediajournal/client"
	"github.com/mediajournal/mediajournal/client/views"
)

// newResourceCommand builds list/get/add/update/delete for one record type.
func newResourceCommand[T any](ctx *commandContext, use string, newView func(*client.Client) *views.View[T]) *cobra.Command {
	// the view is rebuilt per run so state never leaks between invocations
	open := func() (*views.View[T], *client.Client, *cliConfig, error) {
		cfg, err := ctx.ensureConfig()
		if err != nil {
			return nil, nil, nil, err
		}
		api, err := ctx.client()
		if err != nil {
			return nil, nil, nil, err
		}
		return newView(api), api, cfg, nil
	}

	probe := newView(nil)
	names := make([]string, 0, len(probe.Fields))
	for _, f := range probe.Fields {
		names = append(names, f.Name)
	}

	root := &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("Manage your %s", strings.ToLower(probe.Kind().Name)+"s"),
		Long:  fmt.Sprintf("Manage your %ss.\n\nForm fields: %s", strings.ToLower(probe.Kind().Name), strings.Join(names, ", ")),
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List records, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, _, cfg, err := open()
			if err != nil {
				return err
			}
			if err := v.Load(cmd.Context()); err != nil {
				return viewError(v.Err, err)
			}
			return renderRecords(cmd, cfg.Output, v, v.Records)
		},
	}

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, api, cfg, err := open()
			if err != nil {
				return err
			}
			rec, err := client.NewResource[T](api, v.Kind()).Get(cmd.Context(), args[0])
			if err != nil {
				return viewError(client.Message(err), err)
			}
			return renderRecords(cmd, cfg.Output, v, []client.Record[T]{*rec})
		},
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Create a record from --set field=value pairs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, _, cfg, err := open()
			if err != nil {
				return err
			}
			if err := applySets(cmd, v); err != nil {
				return err
			}
			rec, err := v.Submit(cmd.Context())
			if err != nil {
				return viewError(v.Err, err)
			}
			return renderRecords(cmd, cfg.Output, v, []client.Record[T]{*rec})
		},
	}
	add.Flags().StringArrayP("set", "s", nil, "field=value (repeatable)")

	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a record; unset fields keep their values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, _, cfg, err := open()
			if err != nil {
				return err
			}
			if err := v.Load(cmd.Context()); err != nil {
				return viewError(v.Err, err)
			}
			if err := v.EditByID(args[0]); err != nil {
				return viewError(v.Err, err)
			}
			if err := applySets(cmd, v); err != nil {
				return err
			}
			rec, err := v.Submit(cmd.Context())
			if err != nil {
				return viewError(v.Err, err)
			}
			return renderRecords(cmd, cfg.Output, v, []client.Record[T]{*rec})
		},
	}
	update.Flags().StringArrayP("set", "s", nil, "field=value (repeatable)")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, _, _, err := open()
			if err != nil {
				return err
			}
			if err := v.Delete(cmd.Context(), args[0]); err != nil {
				return viewError(v.Err, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s removed (%d left)\n", v.Kind().Name, len(v.Records))
			return nil
		},
	}

	root.AddCommand(list, get, add, update, del)
	return root
}

func applySets[T any](cmd *cobra.Command, v *views.View[T]) error {
	sets, _ := cmd.Flags().GetStringArray("set")
	for _, kv := range sets {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("--set %q: want field=value", kv)
		}
		if err := v.Set(strings.TrimSpace(name), value); err != nil {
			return viewError(v.Err, err)
		}
	}
	return nil
}

// viewError keeps cancellation recognisable and otherwise reduces err to the
// one-line message the view recorded.
func viewError(msg string, err error) error {
	if errors.Is(err, context.Canceled) || msg == "" {
		return err
	}
	return errors.New(msg)
}
