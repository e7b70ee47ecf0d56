package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/akinalp/forum/searchparams"
)

// decoded is what decode prints.
type decoded struct {
	Kind    string `json:"kind"`
	Request any    `json:"request"`
	Token   string `json:"token"`
	View    string `json:"view,omitempty"`
}

// kind adapts one codec to the commands.
type kind struct {
	encode func(sets []string) (string, error)
	decode func(token string) decoded
}

func codecKind[R any](name string, c *searchparams.Codec[R], view func(R) string) kind {
	return kind{
		encode: func(sets []string) (string, error) {
			r := c.Defaults()
			for _, s := range sets {
				key, value, ok := strings.Cut(s, "=")
				if !ok {
					return "", fmt.Errorf("--set %q: want key=value", s)
				}
				if err := c.Set(&r, key, value); err != nil {
					return "", err
				}
			}
			return c.Encode(r), nil
		},
		decode: func(token string) decoded {
			r := c.Decode(token)
			out := decoded{Kind: name, Request: r, Token: c.Encode(r)}
			if view != nil {
				out.View = view(r)
			}
			return out
		},
	}
}

var kinds = map[string]kind{
	"forum": codecKind("forum", searchparams.ForumCodec, func(r searchparams.ForumSearch) string {
		return string(r.View())
	}),
	"user":  codecKind("user", searchparams.UserCodec, nil),
	"top10": codecKind("top10", searchparams.Top10Codec, nil),
}

func kindNames() string {
	names := make([]string, 0, len(kinds))
	for name := range kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func lookupKind(name string) (kind, error) {
	k, ok := kinds[name]
	if !ok {
		return kind{}, fmt.Errorf("unknown kind %q (want one of: %s)", name, kindNames())
	}
	return k, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "searchtoken",
		Short:         "Encode and decode forum search tokens",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("kind", "forum", "token kind: "+kindNames())

	root.AddCommand(newEncodeCmd(), newDecodeCmd())
	return root
}

func newEncodeCmd() *cobra.Command {
	var sets []string

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Build a canonical token from field values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("kind")
			k, err := lookupKind(name)
			if err != nil {
				return err
			}
			token, err := k.encode(sets)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field as short=value, repeatable (e.g. --set pi=2)")
	return cmd
}

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode [token]",
		Short: "Print the request a token stands for, as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("kind")
			k, err := lookupKind(name)
			if err != nil {
				return err
			}
			token := ""
			if len(args) == 1 {
				token = args[0]
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(k.decode(token))
		},
	}
}
